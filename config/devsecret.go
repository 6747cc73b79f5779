//go:build !devauth

package config

func devSessionSecret(string) string { return "" }

func devSecretAllowed(string) bool { return false }
