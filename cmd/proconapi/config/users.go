package config

import (
	"github.com/JonasBM/procon-itajai-simplificado-api/storage"
)

// usersConf holds account-related configuration
type usersConf struct {
	Argon2idParams storage.Argon2idParams `yaml:"password_hashing"`
}

var defaultUsersConf = usersConf{
	Argon2idParams: storage.Argon2idParams{
		Time:        1,
		MemoryKiB:   64 * 1024,
		Parallelism: 4,
		KeyLen:      64,
		SaltLen:     32,
	},
}
