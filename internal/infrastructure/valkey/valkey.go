package valkey

import (
	"github.com/stroppy-io/deployments-driver/internal/core/build"
	"github.com/valkey-io/valkey-go"
	"github.com/valkey-io/valkey-go/valkeyotel"
)

func NewValkey(cfg *Config) (valkey.Client, error) {
	client, err := valkeyotel.NewClient(valkey.ClientOption{
		InitAddress: cfg.Addresses,
		Username:    cfg.Username,
		Password:    cfg.Password,
		ClientName:  build.ServiceName + "." + build.GlobalInstanceId,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}
