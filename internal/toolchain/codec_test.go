package toolchain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecordRoundTrip(t *testing.T) {
	for name, environ := range map[string]map[string]string{
		"with secrets":    {"PRIVATE_KEY": "0xabc", "POLYGONSCAN_API_KEY": "scan-key"},
		"without secrets": {},
	} {
		t.Run(name, func(t *testing.T) {
			cfg := Load(environ)

			rec, err := cfg.Record()
			require.NoError(t, err)

			back, err := FromRecord(rec)
			require.NoError(t, err)
			assert.Equal(t, cfg, back)

			data, err := Encode(cfg)
			require.NoError(t, err)
			decoded, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, cfg, decoded)
		})
	}
}

func TestRecordShape(t *testing.T) {
	rec, err := Load(nil).Record()
	require.NoError(t, err)

	compiler := rec["compiler"].(map[string]any)
	assert.Equal(t, "0.6.12", compiler["version"])

	networks := rec["networks"].(map[string]any)
	assert.Len(t, networks, 2)
	polygon := networks["polygon"].(map[string]any)
	assert.Equal(t, float64(137), polygon["chainId"])
	assert.Nil(t, polygon["signingKey"])

	verification := rec["verification"].(map[string]any)
	assert.Nil(t, verification["apiKey"])
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode([]byte(`{"networks":`))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"verification":{"apiKey":42}}`))
	assert.Error(t, err)
}

func TestSecretNeverPrinted(t *testing.T) {
	s := NewSecret("0xabc")

	assert.NotContains(t, s.String(), "0xabc")
	assert.NotContains(t, fmt.Sprintf("%v %+v %#v", s, s, s), "0xabc")
	assert.Equal(t, "<absent>", Secret{}.String())

	core, logs := observer.New(zap.InfoLevel)
	zap.New(core).Info("loaded", zap.Object("signing_key", s))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, map[string]any{"present": true}, logs.All()[0].ContextMap()["signing_key"])
}
