// Package utils holds the configuration loader and logger factory behind the
// revreq CLI.
//
// ConfigurationLoader layers embedded defaults, a config file, and REVREQ_
// environment variables through Viper. LoggerFactory builds the zap diagnostic
// logger and the message-only console logger.
package utils
