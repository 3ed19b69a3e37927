package models

import (
    "time"

    "github.com/xaenox/recycle-bot/internal/advisor"
)

// Prediction is a ranked label from the image classifier
type Prediction = advisor.Prediction

type Source string

const (
    TelegramPhoto    Source = "telegram_photo"
    TelegramDocument Source = "telegram_document"
    TelegramText     Source = "telegram_text"
    APIUpload        Source = "api"
)

// Analysis represents one classified image together with the advice given
type Analysis struct {
    ID                  string             `json:"id"`
    UserID              int64              `json:"user_id"`
    Source              Source             `json:"source"`
    Predictions         []Prediction       `json:"predictions"`
    Categories          advisor.Categories `json:"categories"`
    Recommendation      string             `json:"recommendation"`
    DisposalInstruction string             `json:"disposal_instruction"`
    CreatedAt           time.Time          `json:"created_at"`
}

// TopLabel returns the label that drove the advice, or "" if nothing was predicted
func (a *Analysis) TopLabel() string {
    if len(a.Predictions) == 0 {
        return ""
    }
    return a.Predictions[0].Label
}
