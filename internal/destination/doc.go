// Package destination holds what the replication backends share: the folder
// map that routes meetings to a remote folder or path, and the per-file
// result list returned by a replication run.
//
// A folder map is a JSON object keyed by meeting id. Values are either a
// destination string (a Drive folder id or an rclone path) or false, which
// excludes the meeting from replication. The reserved "default" key applies
// to meetings without an entry of their own:
//
//	{"81234567890": "1AbCdEf", "default": "0XyZ", "89999999999": false}
package destination
