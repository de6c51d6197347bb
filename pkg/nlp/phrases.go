package nlp

import "strings"

// Category groups time controls the way the setup screens list them.
type Category string

const (
	Bullet    Category = "bullet"
	Blitz     Category = "blitz"
	Rapid     Category = "rapid"
	Classical Category = "classical"
)

var timeControlLabels = map[Intent]string{
	SelectBullet1_0:  "1+0",
	SelectBullet1_1:  "1+1",
	SelectBullet2_1:  "2+1",
	SelectBullet2_0:  "2+0",
	SelectBullet30_0: "0.5+0",

	SelectBlitz3_0: "3+0",
	SelectBlitz3_2: "3+2",
	SelectBlitz5_0: "5+0",
	SelectBlitz5_3: "5+3",
	SelectBlitz4_2: "4+2",

	SelectRapid10_0:  "10+0",
	SelectRapid10_5:  "10+5",
	SelectRapid15_10: "15+10",
	SelectRapid15_0:  "15+0",
	SelectRapid25_10: "25+10",

	SelectClassical90_30:    "90+30",
	SelectClassical60_0:     "60+0",
	SelectClassical60_30:    "60+30",
	SelectClassical120_30:   "120+30",
	SelectClassical90_40_30: "90/40+30",

	SelectBullet:    "1+0",
	SelectBlitz:     "5+3",
	SelectRapid:     "10+0",
	SelectClassical: "15+10",
}

// TimeControlLabel returns the clock label an intent selects.
func TimeControlLabel(intent Intent) (string, bool) {
	label, ok := timeControlLabels[intent]
	return label, ok
}

var listingCategories = map[Intent]Category{
	TimeControlsBullet:    Bullet,
	TimeControlsBlitz:     Blitz,
	TimeControlsRapid:     Rapid,
	TimeControlsClassical: Classical,
}

// ListingCategory reports which category a "time controls ..." intent asks
// about.
func ListingCategory(intent Intent) (Category, bool) {
	category, ok := listingCategories[intent]
	return category, ok
}

var timeControlListings = map[Category]string{
	Bullet:    "Bullet time controls are: 1 plus 0, 1 plus 1, 2 plus 1, 2 plus 0, and 30 seconds plus 0",
	Blitz:     "Blitz time controls are: 3 plus 0, 3 plus 2, 5 plus 0, 5 plus 3, and 4 plus 2",
	Rapid:     "Rapid time controls are: 10 plus 0, 10 plus 5, 15 plus 10, 15 plus 0, and 25 plus 10",
	Classical: "Classical time controls are: 90 plus 30, 60 plus 0, 60 plus 30, 120 plus 30, and 90 per 40 moves plus 30",
}

func TimeControlListing(category Category) string {
	return timeControlListings[category]
}

var feedback = map[Intent]string{
	StartVoiceChess:   "Starting voice chess",
	StartClassicChess: "Starting classic chess",

	SelectBullet:     "Bullet selected",
	SelectBullet1_0:  "Bullet 1 plus 0 selected",
	SelectBullet1_1:  "Bullet 1 plus 1 selected",
	SelectBullet2_1:  "Bullet 2 plus 1 selected",
	SelectBullet2_0:  "Bullet 2 plus 0 selected",
	SelectBullet30_0: "Bullet 30 seconds selected",

	SelectBlitz:    "Blitz selected",
	SelectBlitz3_0: "Blitz 3 plus 0 selected",
	SelectBlitz3_2: "Blitz 3 plus 2 selected",
	SelectBlitz5_0: "Blitz 5 plus 0 selected",
	SelectBlitz5_3: "Blitz 5 plus 3 selected",
	SelectBlitz4_2: "Blitz 4 plus 2 selected",

	SelectRapid:      "Rapid selected",
	SelectRapid10_0:  "Rapid 10 plus 0 selected",
	SelectRapid10_5:  "Rapid 10 plus 5 selected",
	SelectRapid15_10: "Rapid 15 plus 10 selected",
	SelectRapid15_0:  "Rapid 15 plus 0 selected",
	SelectRapid25_10: "Rapid 25 plus 10 selected",

	SelectClassical:         "Classical selected",
	SelectClassical90_30:    "Classical 90 plus 30 selected",
	SelectClassical60_0:     "Classical 60 plus 0 selected",
	SelectClassical60_30:    "Classical 60 plus 30 selected",
	SelectClassical120_30:   "Classical 120 plus 30 selected",
	SelectClassical90_40_30: "Classical 90 per 40 moves plus 30 selected",

	SelectRandom:  "Random opponent selected",
	SelectFriends: "Play with friends selected",
	GoBack:        "Going back",
	ShowCommands:  "Opening voice commands list",

	UndoMove:    "Undoing last move",
	FlipBoard:   "Board flipped",
	ToggleSound: "Sound toggled",
}

// Feedback is the short confirmation spoken when intent is recognised. Some
// intents, such as the time-control listings, have none.
func Feedback(intent Intent) string {
	return feedback[intent]
}

// VoiceChessWelcome is read out when voice chess is chosen on the home
// screen.
const VoiceChessWelcome = "Voice chess started. You can select from the following time control categories. " +
	"Bullet for ultra-fast games. Blitz for fast games. Rapid for medium speed games. Or Classical for slow games. " +
	"You can say the category name or say time controls followed by the category name to hear all options. " +
	"For example, say time controls bullet to hear all bullet options."

// Help lists the first phrase of every entry, for the "show commands" reply.
func (c Catalog) Help() string {
	phrases := make([]string, 0, len(c.patterns))
	seen := make(map[string]bool, len(c.patterns))
	for _, p := range c.patterns {
		if len(p.Phrases) == 0 || seen[p.Phrases[0]] {
			continue
		}
		seen[p.Phrases[0]] = true
		phrases = append(phrases, p.Phrases[0])
	}
	return "You can say: " + strings.Join(phrases, ", ")
}
