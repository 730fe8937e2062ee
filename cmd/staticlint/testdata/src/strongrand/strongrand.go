package strongrand

import (
	"crypto/rand"
	"math/big"
)

func Pick(n int64) (int64, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0, err
	}
	return v.Int64(), nil
}
