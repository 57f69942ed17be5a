package processor

import (
	"github.com/code-payments/cnft-minter/pkg/config"
	"github.com/code-payments/cnft-minter/pkg/config/env"
	"github.com/code-payments/cnft-minter/pkg/config/memory"
	"github.com/code-payments/cnft-minter/pkg/config/wrapper"
	"github.com/code-payments/cnft-minter/pkg/solana/cnftminter"
)

const (
	envConfigPrefix = "CNFT_MINTER_"

	ConfigAccountSizeConfigEnvName = envConfigPrefix + "CONFIG_ACCOUNT_SIZE"
	defaultConfigAccountSize       = cnftminter.CollectionConfigAccountSize

	CollectionMetadataFileConfigEnvName = envConfigPrefix + "COLLECTION_METADATA_FILE"
	defaultCollectionMetadataFile       = "collection.json"

	DisableOverwriteConfigEnvName = envConfigPrefix + "DISABLE_OVERWRITE"
	defaultDisableOverwrite       = false
)

type conf struct {
	configAccountSize      config.Uint64
	collectionMetadataFile config.String
	disableOverwrite       config.Bool
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			configAccountSize:      env.NewUint64Config(ConfigAccountSizeConfigEnvName, defaultConfigAccountSize),
			collectionMetadataFile: env.NewStringConfig(CollectionMetadataFileConfigEnvName, defaultCollectionMetadataFile),
			disableOverwrite:       env.NewBoolConfig(DisableOverwriteConfigEnvName, defaultDisableOverwrite),
		}
	}
}

type testOverrides struct {
	configAccountSize      uint64
	collectionMetadataFile string
	disableOverwrite       bool
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		size := overrides.configAccountSize
		if size == 0 {
			size = defaultConfigAccountSize
		}

		file := overrides.collectionMetadataFile
		if len(file) == 0 {
			file = defaultCollectionMetadataFile
		}

		return &conf{
			configAccountSize:      wrapper.NewUint64Config(memory.NewConfig(size), defaultConfigAccountSize),
			collectionMetadataFile: wrapper.NewStringConfig(memory.NewConfig(file), defaultCollectionMetadataFile),
			disableOverwrite:       wrapper.NewBoolConfig(memory.NewConfig(overrides.disableOverwrite), defaultDisableOverwrite),
		}
	}
}
