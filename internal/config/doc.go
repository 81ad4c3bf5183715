// Package config loads enginepoll.json for the enginepoll command.
//
// Every field is optional; missing fields keep their defaults. Durations
// are Go duration strings.
//
// # Configuration File Structure
//
//	{
//	  "address": ":8080",
//	  "path": "/engine.io/",
//	  "pingInterval": "25s",
//	  "pingTimeout": "20s",
//	  "pollTimeout": "30s",
//	  "maxPayload": 1000000,
//	  "maxSessions": 0,
//	  "logLevel": "info",
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "enginepoll",
//	    "path": "/metrics"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.LoadFile("enginepoll.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sc, err := cfg.ServerConfig()
package config
