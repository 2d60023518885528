package gesture

// Word table thresholds on the raw thumb-index tip distance.
const (
	OKMaxDistance    = 0.07
	EatMaxDistance   = 0.06
	DrinkMinDistance = 0.10
	MoneyMaxDistance = 0.05
)

// WordRules returns the word table in evaluation order.
func WordRules(opts WordOptions) []Rule {
	indexOnly := func(f Features) bool {
		return f.IndexUp && !f.MiddleUp && !f.RingUp && !f.PinkyUp
	}
	pointsAtSigner := func(f Features) bool {
		if opts.Mirror {
			return f.IndexTipX < f.WristX
		}
		return f.IndexTipX > f.WristX
	}

	return []Rule{
		{
			Name: "i-love-you",
			Match: func(f Features) bool {
				return f.ThumbUp && f.IndexUp && f.PinkyUp && !f.MiddleUp && !f.RingUp
			},
			Label: Word(WordILoveYou),
		},
		{
			Name: "phone",
			Match: func(f Features) bool {
				return f.ThumbUp && f.PinkyUp && !f.IndexUp && !f.MiddleUp && !f.RingUp
			},
			Label: Word(WordPhone),
		},
		{
			Name: "rock",
			Match: func(f Features) bool {
				return f.IndexUp && f.PinkyUp && !f.MiddleUp && !f.RingUp && !f.ThumbUp
			},
			Label: Word(WordRock),
		},
		{
			Name: "ok",
			Match: func(f Features) bool {
				return f.MiddleUp && f.RingUp && f.PinkyUp && f.ThumbIndex < OKMaxDistance
			},
			Label: Word(WordOK),
		},
		{
			Name: "peace",
			Match: func(f Features) bool {
				return f.IndexUp && f.MiddleUp && !f.RingUp && !f.PinkyUp
			},
			Label: Word(WordPeace),
		},
		{
			Name:  "cool",
			Match: func(f Features) bool { return f.ThumbUp && f.FingersUp == 0 },
			Label: Word(WordCool),
		},
		{
			Name:  "bad",
			Match: func(f Features) bool { return f.ThumbDown && f.FingersUp == 0 },
			Label: Word(WordBad),
		},
		{
			Name:  "hi",
			Match: func(f Features) bool { return f.FingersUp == 4 && f.ThumbUp },
			Label: Word(WordHi),
		},
		{
			Name:  "me",
			Match: func(f Features) bool { return indexOnly(f) && pointsAtSigner(f) },
			Label: Word(WordMe),
		},
		{
			Name:  "you",
			Match: indexOnly,
			Label: Word(WordYou),
		},
		{
			Name:  "eat",
			Match: func(f Features) bool { return f.FingersUp == 0 && f.ThumbIndex < EatMaxDistance },
			Label: Word(WordEat),
		},
		{
			Name:  "drink",
			Match: func(f Features) bool { return f.FingersUp == 0 && f.ThumbIndex > DrinkMinDistance },
			Label: Word(WordDrink),
		},
		{
			Name: "money",
			Match: func(f Features) bool {
				return f.IndexUp && f.MiddleUp && f.ThumbIndex < MoneyMaxDistance
			},
			Label: Word(WordMoney),
		},
	}
}
