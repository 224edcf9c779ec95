package storage

// StorageConfig
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	UseSSL    bool   `yaml:"useSSL"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`

	Region                 string `yaml:"region"`
	CreateBucketIfNotExist bool   `yaml:"createBucketIfNotExist"`
}

// Enabled reports whether the object storage is configured.
func (c StorageConfig) Enabled() bool {
	return c.Endpoint != ""
}
