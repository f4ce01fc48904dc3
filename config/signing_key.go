package config

import (
	"github.com/docker/libtrust"
)

// loadSigningKey loads a private key from file or generates a new one when no file is configured.
func loadSigningKey(privateKeyFile string) (libtrust.PrivateKey, error) {
	if privateKeyFile == "" {
		return libtrust.GenerateECP256PrivateKey()
	}

	return libtrust.LoadKeyFile(privateKeyFile)
}
