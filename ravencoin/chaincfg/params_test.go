package chaincfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RavenProject/ravenspv/ravencoin/wire"
)

func TestParamsForNet(t *testing.T) {
	p, err := ParamsForNet(wire.MainNet)
	require.NoError(t, err)
	assert.Equal(t, "mainnet", p.Name)
	assert.Equal(t, "8767", p.DefaultPort)

	_, err = ParamsForNet(wire.RavencoinNet(0xdeadbeef))
	assert.ErrorIs(t, err, ErrUnknownNet)
}

func TestRegister_DuplicateIsRejected(t *testing.T) {
	err := Register(&MainNetParams)
	assert.ErrorIs(t, err, ErrDuplicateNet)
}
