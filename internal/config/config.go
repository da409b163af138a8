// Package config provides configuration management for the editor.
// It handles hierarchical configuration from multiple sources with
// proper precedence.
//
// Configuration precedence (highest to lowest):
// 1. Command-line arguments
// 2. Environment variables (TVED_ prefix)
// 3. JSON configuration file
// 4. Default values
package config

// Common holds the editor configuration. This global variable provides
// access to the settings after configuration initialization.
var Common *CommonConfig

// Setup initializes the configuration from multiple sources and makes
// the final configuration available via the global variable. It panics
// on configuration errors so the editor cannot start with an invalid
// configuration.
func Setup(args *Args) {
	initializer := initializer{
		Common: newDefaultCommonConfig(),
	}
	if err := initializer.parseConfig(args); err != nil {
		panic(err)
	}
	if err := initializer.transformConfig(args); err != nil {
		panic(err)
	}

	Common = initializer.Common
}
