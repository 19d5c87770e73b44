// Package config resolves the inputs of a zoomsync run.
//
// Every input has a kebab-case name (zoom-account-id, lookback-days, ...)
// and is looked up, in order of precedence, from:
//
//  1. the command line flag of the same name
//  2. the environment: ZOOM_ACCOUNT_ID, then the GitHub Actions forms
//     INPUT_ZOOM_ACCOUNT_ID and INPUT_ZOOM-ACCOUNT-ID
//  3. a YAML config file using snake_case keys (zoom_account_id)
//  4. the defaults
//
// Example config file:
//
//	zoom_account_id: abc
//	zoom_client_id: def
//	lookback_days: 7
//	destination: rclone
//	folder_map: '{"default": "zoom/"}'
package config
