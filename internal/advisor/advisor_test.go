package advisor

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect_KeywordGroups(t *testing.T) {
	for _, label := range []string{"banana", "Granny Smith APPLE", "food court", "fruit bat", "orange"} {
		assert.True(t, Detect(label).Organic, "label %q should be organic", label)
	}
	for _, label := range []string{"plastic bag", "water bottle", "canteen", "Metal Fence", "paper towel",
		"cardboard", "boxer", "newspaper", "envelope", "umbrella"} {
		assert.True(t, Detect(label).InorganicRecyclable, "label %q should be recyclable", label)
	}
	for _, label := range []string{"styrofoam", "diaper", "cigarette butt", "ASHTRAY"} {
		assert.True(t, Detect(label).InorganicNonRecyclable, "label %q should be non-recyclable", label)
	}
}

func TestDetect_NoMatch(t *testing.T) {
	cats := Detect("laptop")
	assert.False(t, cats.Any())
	assert.Empty(t, cats.Descriptions())
}

func TestDetect_IndependentFlags(t *testing.T) {
	cats := Detect("banana and plastic bag")
	assert.Equal(t, Categories{Organic: true, InorganicRecyclable: true}, cats)

	cats = Detect("orange styrofoam box")
	assert.Equal(t, Categories{Organic: true, InorganicRecyclable: true, InorganicNonRecyclable: true}, cats)
	assert.Equal(t, []string{organicDescription, recyclableDescription, nonRecyclableDescription}, cats.Descriptions())
}

func TestAdvise_Scenarios(t *testing.T) {
	tests := []struct {
		name        string
		label       string
		probability float64
		want        Categories
		rec         string
		disposal    string
		prefixed    bool
	}{
		{
			name: "organic", label: "banana", probability: 0.92,
			want:     Categories{Organic: true},
			rec:      "Komposkan sampah organik jika memungkinkan.",
			disposal: "Buang ke tempat kompos atau gunakan komposter rumah untuk sisa makanan.",
			prefixed: true,
		},
		{
			name: "recyclable", label: "plastic bottle", probability: 0.87,
			want:     Categories{InorganicRecyclable: true},
			rec:      "Masukkan ke tempat daur ulang atau bawa ke bank sampah terdekat.",
			disposal: "Masukkan ke tempat daur ulang atau bawa ke bank sampah terdekat.",
			prefixed: true,
		},
		{
			name: "non-recyclable", label: "styrofoam cup", probability: 0.75,
			want:     Categories{InorganicNonRecyclable: true},
			rec:      "Buang sampah ini ke tempat sampah biasa karena tidak dapat didaur ulang.",
			disposal: "Buang ke tempat sampah biasa. Hindari mencampur dengan sampah lain.",
			prefixed: true,
		},
		{
			name: "unrecognized", label: "laptop", probability: 0.6,
			want:     Categories{},
			rec:      "Jenis sampah tidak dikenali. Mohon coba gambar lain.",
			disposal: "Jenis sampah tidak dikenali. Mohon coba gambar lain.",
		},
		{
			name: "mixed", label: "banana and plastic bag", probability: 0.5,
			want:     Categories{Organic: true, InorganicRecyclable: true},
			rec:      "Pisahkan: komposkan bagian organik dan daur ulang bagian anorganik.",
			disposal: "Pisahkan sampah organik dan anorganik. Komposkan sisa makanan dan daur ulang item seperti plastik dan kertas.",
			prefixed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			advice := Advise([]Prediction{{Label: tt.label, Probability: tt.probability}})
			assert.Equal(t, tt.want, advice.Categories)
			assert.Equal(t, tt.disposal, advice.DisposalInstruction)
			if tt.prefixed {
				assert.Contains(t, advice.Recommendation, "Gambar ini tampaknya mengandung ")
				assert.Contains(t, advice.Recommendation, ". Disarankan untuk: "+tt.rec)
			} else {
				assert.Equal(t, tt.rec, advice.Recommendation)
			}
		})
	}
}

func TestAdvise_OrganicPrefixText(t *testing.T) {
	advice := AdviseLabel("banana")
	assert.Equal(t,
		"Gambar ini tampaknya mengandung sampah organik (misalnya sisa makanan). Disarankan untuk: Komposkan sampah organik jika memungkinkan.",
		advice.Recommendation)
}

func TestAdvise_MixedJoinsClauses(t *testing.T) {
	advice := AdviseLabel("banana and plastic bag")
	assert.Equal(t,
		"Gambar ini tampaknya mengandung sampah organik (misalnya sisa makanan) dan sampah anorganik yang dapat didaur ulang (misalnya plastik atau kertas). "+
			"Disarankan untuk: Pisahkan: komposkan bagian organik dan daur ulang bagian anorganik.",
		advice.Recommendation)
}

func TestAdvise_OnlyTopLabelCounts(t *testing.T) {
	advice := Advise([]Prediction{
		{Label: "laptop", Probability: 0.7},
		{Label: "banana", Probability: 0.2},
	})
	assert.False(t, advice.Categories.Any())
	assert.Equal(t, unrecognizedMessage.recommendation, advice.Recommendation)
}

func TestAdvise_OrganicNonRecyclableFallsThroughToOrganic(t *testing.T) {
	advice := AdviseLabel("apple ashtray")
	require.True(t, advice.Categories.Organic)
	require.True(t, advice.Categories.InorganicNonRecyclable)
	require.False(t, advice.Categories.InorganicRecyclable)

	assert.Equal(t, organicMessage.disposal, advice.DisposalInstruction)
	assert.Contains(t, advice.Recommendation, "Disarankan untuk: "+organicMessage.recommendation)
	// the prefix still names both detected categories
	assert.Contains(t, advice.Recommendation, nonRecyclableDescription)
}

func TestAdvise_EmptyIsUnrecognized(t *testing.T) {
	assert.Equal(t, AdviseLabel("laptop"), Advise(nil))
	assert.Equal(t, unrecognizedMessage.recommendation, Advise([]Prediction{}).Recommendation)
}

func TestAdvise_Deterministic(t *testing.T) {
	preds := []Prediction{{Label: "Plastic Bag", Probability: 0.4}}
	first := Advise(preds)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, first, Advise(preds))
		}()
	}
	wg.Wait()
}
