package config

// AppConfig bundles everything main needs to boot the coordinator process.
type AppConfig struct {
	Server ServerConfig
	Log    LogConfig
}

// LoadApp parses both config groups from the environment. Logging config is
// loaded first so a bad server config can still be reported through a
// configured logger.
func LoadApp() (AppConfig, error) {
	var app AppConfig
	var err error
	if app.Log, err = LoadLog(); err != nil {
		return AppConfig{}, err
	}
	if app.Server, err = LoadServer(); err != nil {
		return AppConfig{}, err
	}
	return app, nil
}
