package features

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FilipeAphrody/vocalgate/pkg/voiceprint"
)

const rate = 16000

// tone returns a harmonic-rich tone with silent lead-in and tail.
func tone(f0, amp float64, seconds float64) []float32 {
	n := int(seconds * rate)
	out := make([]float32, n)
	for i := n / 5; i < n-n/5; i++ {
		t := float64(i) / rate
		v := math.Sin(2*math.Pi*f0*t) + 0.5*math.Sin(2*math.Pi*2*f0*t) + 0.25*math.Sin(2*math.Pi*3*f0*t)
		out[i] = float32(amp * v / 1.75)
	}
	return out
}

func noise(seed int64, seconds float64) []float32 {
	r := rand.New(rand.NewSource(seed))
	out := make([]float32, int(seconds*rate))
	for i := range out {
		out[i] = float32(r.Float64()*2 - 1)
	}
	return out
}

func assertFinite(t *testing.T, v []float64) {
	t.Helper()
	for i, x := range v {
		require.False(t, math.IsNaN(x) || math.IsInf(x, 0), "component %d is %v", i, x)
	}
}

func TestNew(t *testing.T) {
	e, err := New("")
	require.NoError(t, err)
	assert.IsType(t, Basic{}, e)

	e, err = New(StrategyEnhanced)
	require.NoError(t, err)
	assert.IsType(t, Enhanced{}, e)

	_, err = New("neural")
	assert.Error(t, err)
}

func TestExtractorsProduceFixedDimension(t *testing.T) {
	for _, s := range []Strategy{StrategyBasic, StrategyEnhanced} {
		t.Run(string(s), func(t *testing.T) {
			e, err := New(s)
			require.NoError(t, err)

			short, err := e.Extract(tone(150, 0.6, 1), rate)
			require.NoError(t, err)
			long, err := e.Extract(tone(150, 0.6, 3), rate)
			require.NoError(t, err)

			assert.Len(t, short, e.Dimension())
			assert.Len(t, long, e.Dimension())
			assertFinite(t, short)
			assertFinite(t, long)
		})
	}
	assert.NotEqual(t, Basic{}.Dimension(), NewEnhanced().Dimension())
}

func TestExtractDeterministic(t *testing.T) {
	x := tone(220, 0.4, 1)
	for _, e := range []Extractor{Basic{}, NewEnhanced()} {
		a, err := e.Extract(x, rate)
		require.NoError(t, err)
		b, err := e.Extract(x, rate)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestEnhancedIsGainInvariant(t *testing.T) {
	e := NewEnhanced()
	quiet, err := e.Extract(tone(180, 0.1, 1), rate)
	require.NoError(t, err)
	loud, err := e.Extract(tone(180, 0.9, 1), rate)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, voiceprint.Score(quiet, loud), 1e-6)
}

func TestEnhancedSeparatesToneFromNoise(t *testing.T) {
	e := NewEnhanced()
	a, err := e.Extract(tone(140, 0.5, 1), rate)
	require.NoError(t, err)
	b, err := e.Extract(tone(140, 0.7, 1.5), rate)
	require.NoError(t, err)
	c, err := e.Extract(noise(7, 1), rate)
	require.NoError(t, err)

	assert.Greater(t, voiceprint.Score(a, b), voiceprint.Score(a, c))
}

func TestEnhancedRejectsSilence(t *testing.T) {
	_, err := NewEnhanced().Extract(make([]float32, rate), rate)
	assert.ErrorIs(t, err, ErrSilent)
}

func TestBasicToleratesSilence(t *testing.T) {
	v, err := Basic{}.Extract(make([]float32, rate), rate)
	require.NoError(t, err)
	assertFinite(t, v)
	assert.Equal(t, 0.0, v[1], "energy of silence")
}

func TestExtractTooShort(t *testing.T) {
	_, err := Basic{}.Extract(make([]float32, 100), rate)
	assert.ErrorIs(t, err, ErrTooShort)
	_, err = NewEnhanced().Extract([]float32{0.5, -0.5, 0.25}, rate)
	assert.ErrorIs(t, err, ErrTooShort)
	_, err = NewEnhanced().Extract(nil, rate)
	assert.ErrorIs(t, err, ErrTooShort)
}

func TestExtractInvalidRate(t *testing.T) {
	_, err := Basic{}.Extract(tone(100, 0.5, 1), 0)
	assert.ErrorIs(t, err, ErrSampleRate)
	_, err = NewEnhanced().Extract(tone(100, 0.5, 1), 10)
	assert.ErrorIs(t, err, ErrSampleRate)
}

func TestVoicedSpanTrimsSilence(t *testing.T) {
	x, err := normalize(tone(200, 0.5, 1))
	require.NoError(t, err)
	fr := newFramer(400, 160, rate)
	n := fr.count(len(x))

	first, last := voicedSpan(x, fr, n, 0.1)
	assert.Greater(t, first, 0)
	assert.Less(t, last, n-1)
}
