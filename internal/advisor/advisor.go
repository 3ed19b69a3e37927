// Package advisor maps the top label of an image classification to waste
// categories and recycling advice.
package advisor

import (
	"strings"
)

// Prediction is a single label returned by an image classifier.
type Prediction struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// Categories holds the waste categories detected in a label. The flags are
// independent; a label may set any combination of them.
type Categories struct {
	Organic                bool `json:"organic"`
	InorganicRecyclable    bool `json:"inorganic_recyclable"`
	InorganicNonRecyclable bool `json:"inorganic_non_recyclable"`
}

// Advice is the user-facing result for one classification.
type Advice struct {
	Categories          Categories `json:"categories"`
	Recommendation      string     `json:"recommendation"`
	DisposalInstruction string     `json:"disposal_instruction"`
}

var (
	organicKeywords = []string{"banana", "apple", "food", "fruit", "orange"}

	recyclableKeywords = []string{
		"plastic", "bottle", "can", "metal", "paper", "cardboard",
		"box", "newspaper", "envelope", "plastic bag", "umbrella",
	}

	nonRecyclableKeywords = []string{"styrofoam", "diaper", "cigarette", "ashtray"}
)

const (
	organicDescription       = "sampah organik (misalnya sisa makanan)"
	recyclableDescription    = "sampah anorganik yang dapat didaur ulang (misalnya plastik atau kertas)"
	nonRecyclableDescription = "sampah yang tidak dapat didaur ulang (misalnya styrofoam)"
)

type message struct {
	recommendation string
	disposal       string
}

var (
	mixedMessage = message{
		recommendation: "Pisahkan: komposkan bagian organik dan daur ulang bagian anorganik.",
		disposal:       "Pisahkan sampah organik dan anorganik. Komposkan sisa makanan dan daur ulang item seperti plastik dan kertas.",
	}
	organicMessage = message{
		recommendation: "Komposkan sampah organik jika memungkinkan.",
		disposal:       "Buang ke tempat kompos atau gunakan komposter rumah untuk sisa makanan.",
	}
	recyclableMessage = message{
		recommendation: "Masukkan ke tempat daur ulang atau bawa ke bank sampah terdekat.",
		disposal:       "Masukkan ke tempat daur ulang atau bawa ke bank sampah terdekat.",
	}
	nonRecyclableMessage = message{
		recommendation: "Buang sampah ini ke tempat sampah biasa karena tidak dapat didaur ulang.",
		disposal:       "Buang ke tempat sampah biasa. Hindari mencampur dengan sampah lain.",
	}
	unrecognizedMessage = message{
		recommendation: "Jenis sampah tidak dikenali. Mohon coba gambar lain.",
		disposal:       "Jenis sampah tidak dikenali. Mohon coba gambar lain.",
	}
)

// Detect reports which categories a label belongs to. Matching is by
// case-insensitive substring, so "can" also matches "canteen".
func Detect(label string) Categories {
	label = strings.ToLower(label)
	return Categories{
		Organic:                containsAny(label, organicKeywords),
		InorganicRecyclable:    containsAny(label, recyclableKeywords),
		InorganicNonRecyclable: containsAny(label, nonRecyclableKeywords),
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// Any reports whether at least one category is set.
func (c Categories) Any() bool {
	return c.Organic || c.InorganicRecyclable || c.InorganicNonRecyclable
}

// Descriptions returns a clause for every detected category, ordered
// organic, recyclable, non-recyclable.
func (c Categories) Descriptions() []string {
	var desc []string
	if c.Organic {
		desc = append(desc, organicDescription)
	}
	if c.InorganicRecyclable {
		desc = append(desc, recyclableDescription)
	}
	if c.InorganicNonRecyclable {
		desc = append(desc, nonRecyclableDescription)
	}
	return desc
}

// Organic together with non-recyclable and no recyclable flag resolves to the
// organic message; the non-recyclable flag is ignored.
func (c Categories) message() message {
	switch {
	case c.Organic && c.InorganicRecyclable:
		return mixedMessage
	case c.Organic:
		return organicMessage
	case c.InorganicRecyclable:
		return recyclableMessage
	case c.InorganicNonRecyclable:
		return nonRecyclableMessage
	default:
		return unrecognizedMessage
	}
}

// Advise builds advice from predictions ranked by descending probability.
// Only the first prediction is considered. An empty slice yields the
// unrecognized advice.
func Advise(predictions []Prediction) Advice {
	if len(predictions) == 0 {
		return AdviseLabel("")
	}
	return AdviseLabel(predictions[0].Label)
}

// AdviseLabel builds advice for a single top label.
func AdviseLabel(label string) Advice {
	cats := Detect(label)
	msg := cats.message()

	recommendation := msg.recommendation
	if desc := cats.Descriptions(); len(desc) > 0 {
		recommendation = "Gambar ini tampaknya mengandung " + strings.Join(desc, " dan ") +
			". Disarankan untuk: " + msg.recommendation
	}

	return Advice{
		Categories:          cats,
		Recommendation:      recommendation,
		DisposalInstruction: msg.disposal,
	}
}
