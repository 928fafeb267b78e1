package service

import "math/rand"

// Per-goal notification titles. Goals without a dedicated set fall back to
// the default set.
var goalTitles = map[string][]string{
	"Learning new tech stack": {
		"🚀 Time to level up your skills!",
		"📚 Every day of learning compounds into expertise!",
		"💡 New technology mastery awaits!",
	},
	"Working on side projects": {
		"🛠️ Your side project is waiting for you!",
		"💪 Ship something awesome today!",
		"🎯 One commit closer to launch!",
	},
	"Preparing for placements": {
		"📝 Consistency beats cramming!",
		"🎓 Future employers notice dedication!",
		"💼 Your portfolio grows with each commit!",
	},
	"Freelance work": {
		"💰 Your clients value your dedication!",
		"⚡ Build your reputation with consistency!",
		"🌟 Great freelancers show up daily!",
	},
	"Personal portfolio": {
		"🖼️ Your portfolio is your best resume!",
		"✨ Showcase your growth every day!",
		"🎨 Each project tells your story!",
	},
}

var defaultTitles = []string{
	"🔥 Time to Code!",
	"💻 Keep the streak alive!",
	"🚀 Consistency is your superpower!",
}

// PickTitle selects a motivational title for the user's goal. The rng is
// supplied by the caller so tests can seed it deterministically.
func PickTitle(goal string, rng *rand.Rand) string {
	titles, ok := goalTitles[goal]
	if !ok {
		titles = defaultTitles
	}
	return titles[rng.Intn(len(titles))]
}
