//go:build devauth

package config

func devSessionSecret(env string) string {
	if !devSecretAllowed(env) {
		return ""
	}
	return DevSessionSecret
}

func devSecretAllowed(env string) bool { return env == "development" }
