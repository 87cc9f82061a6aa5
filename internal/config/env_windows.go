//go:build windows

package config

// mapEnvKey maps unix variable names used in shared configs to their
// Windows equivalents.
func mapEnvKey(key string) string {
	switch key {
	case "HOSTNAME":
		return "COMPUTERNAME"
	case "USER":
		return "USERNAME"
	case "HOME":
		return "USERPROFILE"
	}
	return key
}
