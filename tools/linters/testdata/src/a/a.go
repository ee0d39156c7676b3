package a

import "os"

// Setup code outside tests may touch the environment.
func Setup() {
	os.Setenv("DB_TYPE", "memory")
}
