// Package config loads the catsite server configuration.
//
// The configuration is a TOML file, catsite.toml by default. Every key is
// optional; a missing file yields the defaults. Durations are Go duration
// strings.
//
// # Configuration File Structure
//
//	[server]
//	addr = ":8080"
//	max_sessions = 1000
//	ping_interval = "30s"
//
//	[toast]
//	display = "5s"
//
//	[page]
//	mba_period = "4s"
//
//	[assets]
//	source = "s3"
//	bucket = "my-site"
//	region = "ap-south-1"
//
//	[actions]
//	file = "actions.yaml"
//	watch = true
//
//	[log]
//	level = "debug"
//	format = "json"
//
// # Usage
//
//	cfg, err := config.Load("catsite.toml")
//	if err != nil {
//	    errors.PrintError(err)
//	    os.Exit(1)
//	}
//	p := page.New(surface, loop, page.WithConfig(cfg.Page()))
package config
