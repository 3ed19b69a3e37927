package classifier

import (
	"context"
	"strings"

	"github.com/xaenox/recycle-bot/internal/models"
)

// ImageClassifier produces predictions ranked by descending probability.
type ImageClassifier interface {
	Classify(ctx context.Context, image []byte, mime string) ([]models.Prediction, error)
}

// CaptionClassifier turns free text (a photo caption or a typed message) into
// a single prediction. Indonesian item names are translated so the advice
// keywords can match them.
type CaptionClassifier struct {
	maxLabelLen int
}

func NewCaptionClassifier(maxLabelLen int) *CaptionClassifier {
	return &CaptionClassifier{maxLabelLen: maxLabelLen}
}

var translations = map[string]string{
	"pisang":    "banana",
	"apel":      "apple",
	"makanan":   "food",
	"buah":      "fruit",
	"jeruk":     "orange",
	"plastik":   "plastic",
	"botol":     "bottle",
	"kaleng":    "can",
	"logam":     "metal",
	"besi":      "metal",
	"kertas":    "paper",
	"kardus":    "cardboard",
	"kotak":     "box",
	"koran":     "newspaper",
	"amplop":    "envelope",
	"payung":    "umbrella",
	"popok":     "diaper",
	"rokok":     "cigarette",
	"puntung":   "cigarette",
	"asbak":     "ashtray",
	"stirofoam": "styrofoam",
}

// ClassifyText returns nil when text holds no words.
func (c *CaptionClassifier) ClassifyText(text string) []models.Prediction {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return nil
	}

	label := make([]string, 0, len(words))
	seen := make(map[string]struct{})
	for _, word := range words {
		word = strings.Trim(strings.TrimPrefix(word, "#"), ".,!?;:\"'()")
		if word == "" {
			continue
		}
		if en, ok := translations[word]; ok {
			word = en
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		label = append(label, word)
	}
	if len(label) == 0 {
		return nil
	}

	joined := strings.Join(label, " ")
	if r := []rune(joined); c.maxLabelLen > 0 && len(r) > c.maxLabelLen {
		joined = string(r[:c.maxLabelLen])
	}
	return []models.Prediction{{Label: joined, Probability: 1}}
}
