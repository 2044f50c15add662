package chainlocator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RavenProject/ravenspv/internal/powstub"
)

func testEngine() *Engine {
	return &Engine{
		X16R:                 powstub.X16R,
		X16Rv2:               powstub.X16Rv2,
		Kawpow:               powstub.LightVerify,
		X16Rv2ActivationTime: 1550000000,
	}
}

func TestEngine_Locators_MixedWindow(t *testing.T) {
	const activation = 1600000000
	var raw []byte
	for i := 0; i < 500; i++ {
		raw = append(raw, buildLegacyHeader(uint32(1500000000+i))...)
		raw = append(raw, 0x00)
	}
	var mix [32]byte
	mix[0] = 0x11
	for i := 0; i < 1500; i++ {
		raw = append(raw, buildKawpowHeader(uint32(activation+i), uint64(i), mix)...)
		raw = append(raw, 0x00)
	}

	headers, err := DecodeHeaders(raw, 2000, activation)
	require.NoError(t, err)
	require.Len(t, headers, 2000)

	e := testEngine()
	tail, head, err := e.Locators(headers)
	require.NoError(t, err)

	wantHead, err := e.HeaderHash(headers[0])
	require.NoError(t, err)
	wantTail, err := e.HeaderHash(headers[len(headers)-1])
	require.NoError(t, err)

	assert.Equal(t, wantHead, head)
	assert.Equal(t, wantTail, tail)
	assert.Equal(t, Legacy, headers[0].Kind)
	assert.Equal(t, Kawpow, headers[len(headers)-1].Kind)
}

func TestEngine_Process_StillCatchingUpAt2000(t *testing.T) {
	const activation = 1600000000
	var raw []byte
	for i := 0; i < 2000; i++ {
		raw = append(raw, buildLegacyHeader(uint32(1500000000+i))...)
		raw = append(raw, 0x00)
	}
	headers, err := DecodeHeaders(raw, 2000, activation)
	require.NoError(t, err)

	e := testEngine()
	decision, err := e.Process(headers, 1900000000)
	require.NoError(t, err)
	assert.Equal(t, RequestGetBlocks, decision.Kind)
}

func TestEngine_Process_CaughtUpIssuesGetHeaders(t *testing.T) {
	const activation = 1600000000
	var raw []byte
	for i := 0; i < 3; i++ {
		raw = append(raw, buildLegacyHeader(uint32(1500000000+i))...)
		raw = append(raw, 0x00)
	}
	headers, err := DecodeHeaders(raw, 3, activation)
	require.NoError(t, err)

	e := testEngine()
	decision, err := e.Process(headers, 1400000000)
	require.NoError(t, err)
	assert.Equal(t, RequestGetHeaders, decision.Kind)
}

func TestStillCatchingUp(t *testing.T) {
	assert.True(t, StillCatchingUp(2000, 1500000000, 1900000000))
	assert.True(t, StillCatchingUp(3, 1000000000, 2000000000))
	assert.False(t, StillCatchingUp(3, 1999000000, 1000000000))
}
