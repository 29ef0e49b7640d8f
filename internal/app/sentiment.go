package app

import (
	"github.com/grassmudhorses/vader-go/lexicon"
	"github.com/grassmudhorses/vader-go/sentitext"

	"bizreview/internal/domain"
)

// Score derives a polarity in [-1,1] for one review. The analyzer is only
// trusted for English text; empty or non-English text degrades to a discrete
// rating-derived proxy. A rating outside 1..5 under the fallback yields nil
// (preserved behavior, see DESIGN.md).
func Score(r domain.Review) *float64 {
	if len(r.Text) == 0 || r.Lang != "en" {
		if r.Rating == nil {
			return nil
		}
		switch *r.Rating {
		case 5:
			return ptrFloat(1.0)
		case 4:
			return ptrFloat(0.5)
		case 3:
			return ptrFloat(0.0)
		case 2:
			return ptrFloat(-0.5)
		case 1:
			return ptrFloat(-1.0)
		default:
			return nil
		}
	}
	parsed := sentitext.Parse(r.Text, lexicon.DefaultLexicon)
	return ptrFloat(sentitext.PolarityScore(parsed).Compound)
}

// Annotate fills the Sentiment column of a review table.
func Annotate(rows []domain.Review) []domain.Review {
	out := make([]domain.Review, len(rows))
	copy(out, rows)
	for i := range out {
		out[i].Sentiment = Score(out[i])
	}
	return out
}

func ptrFloat(f float64) *float64 { return &f }
