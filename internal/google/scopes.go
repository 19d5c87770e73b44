package google

// DriveScopes are the scopes requested for replicating recordings to Drive.
// Full drive access is needed to create folders inside shared drives.
var DriveScopes = []string{
	"https://www.googleapis.com/auth/drive",
}
