package config

import "os"

func IsDebug() bool {
	return os.Getenv("SEARCHBOT_DEBUG") == "1"
}
