package config

import "os"

// CredentialsLocation reports where Google credentials are configured, if
// anywhere. The file itself is never opened here; Firebase clients validate
// it when they initialize.
func CredentialsLocation() (string, bool) {
	path := os.Getenv(CredentialsEnvVar)
	return path, path != ""
}
