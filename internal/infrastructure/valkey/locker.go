package valkey

import (
	"time"

	"github.com/valkey-io/valkey-go"
	"github.com/valkey-io/valkey-go/valkeylock"
)

const stackLockPrefix = "deployments:stack-lock:"

// NewStackLocker returns a locker whose keys are stack names. A lock held by
// a crashed driver expires after keyValidity.
func NewStackLocker(client valkey.Client, keyValidity time.Duration) (valkeylock.Locker, error) {
	lock, err := valkeylock.NewLocker(valkeylock.LockerOption{
		ClientBuilder: func(option valkey.ClientOption) (valkey.Client, error) {
			return client, nil
		},
		KeyPrefix:      stackLockPrefix,
		KeyValidity:    keyValidity,
		ExtendInterval: keyValidity / 2,
		TryNextAfter:   time.Second,
	})
	if err != nil {
		return nil, err
	}
	return lock, nil
}
