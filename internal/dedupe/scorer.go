package dedupe

import (
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"grievancedesk/backend/internal/config"
	"grievancedesk/backend/internal/models"
	"grievancedesk/backend/internal/normalize"
)

// Breakdown is the per-signal evidence behind a composite score. It is kept
// alongside the composite so a reviewer can see why a pair matched.
type Breakdown struct {
	Text  float64 `json:"text"`
	Phone float64 `json:"phone"`
	Email float64 `json:"email"`
	Name  float64 `json:"name"`
	Time  float64 `json:"time"`
}

// Composite folds the breakdown into the weighted score in [0,1].
func (b Breakdown) Composite() float64 {
	return config.WeightText*b.Text +
		config.WeightPhone*b.Phone +
		config.WeightEmail*b.Email +
		config.WeightName*b.Name +
		config.WeightTime*b.Time
}

// ScorePair computes the five similarity signals for a candidate pair. Every
// signal is symmetric in its arguments, so the composite is too. Missing
// fields contribute 0, never an error.
func ScorePair(a, b *models.ComplaintRecord, model *TFIDFModel) (float64, Breakdown) {
	var bd Breakdown

	if a.Name != nil && b.Name != nil {
		bd.Name = float64(fuzzy.TokenSortRatio(*a.Name, *b.Name)) / 100.0
	}
	if a.Phone != nil && b.Phone != nil && *a.Phone == *b.Phone {
		bd.Phone = 1.0
	}
	if a.Email != nil && b.Email != nil && *a.Email == *b.Email {
		bd.Email = 1.0
	}
	if a.Timestamp != nil && b.Timestamp != nil &&
		normalize.Day(*a.Timestamp) == normalize.Day(*b.Timestamp) {
		bd.Time = 1.0
	}
	bd.Text = model.Cosine(a.ID, b.ID)

	return bd.Composite(), bd
}
