package db

import (
	"encoding/json"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// seedPlayer is the flat shape the demo dataset is written in.
type seedPlayer struct {
	id          string
	name        string
	skill       float64
	styles      []string
	gender      string
	verified    bool
	newcomer    bool
	bio         string
	photo       string
	slots       [][3]string // day, start, end
	lat, lng    float64
	city, state string
}

// SeedDemoData resets the demo directory and populates it with a fixed
// candidate set around San Francisco, plus the demo actor account.
//
// Behavior:
//  1. Clears `directory_players` and `accounts`.
//  2. Inserts the demo players with JSON-encoded styles/slots.
//  3. Creates the demo actor with a hashed password.
//
// Compatible with both MySQL and SQLite.
func SeedDemoData(database *gorm.DB) error {
	if err := database.Exec("DELETE FROM directory_players").Error; err != nil {
		return fmt.Errorf("failed to clear directory: %w", err)
	}
	if err := database.Exec("DELETE FROM accounts").Error; err != nil {
		return fmt.Errorf("failed to clear accounts: %w", err)
	}

	log.Println("Cleared existing demo data")

	for _, sp := range demoPlayers() {
		styles, _ := json.Marshal(sp.styles)
		slots := make([]map[string]string, 0, len(sp.slots))
		for _, s := range sp.slots {
			slots = append(slots, map[string]string{
				"day_of_week": s[0],
				"start_time":  s[1],
				"end_time":    s[2],
			})
		}
		slotsJSON, _ := json.Marshal(slots)

		row := DirectoryPlayer{
			ID:          sp.id,
			Name:        sp.name,
			SkillLevel:  sp.skill,
			GameStyles:  string(styles),
			Gender:      sp.gender,
			IsVerified:  sp.verified,
			IsNewToArea: sp.newcomer,
			Bio:         sp.bio,
			PhotoURL:    sp.photo,
			TimeSlots:   string(slotsJSON),
			Latitude:    sp.lat,
			Longitude:   sp.lng,
			City:        sp.city,
			State:       sp.state,
		}
		if err := database.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
			return fmt.Errorf("failed to seed player %s: %w", sp.name, err)
		}
	}
	log.Println("Seeded demo player directory.")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	actor := Account{
		ID:           "demo-actor",
		Email:        "demo@tennis-connect.local",
		Name:         "Demo Player",
		PasswordHash: string(hash),
		SkillLevel:   4.0,
		Latitude:     37.7749,
		Longitude:    -122.4194,
		City:         "San Francisco",
		State:        "CA",
	}
	if err := database.Clauses(clause.OnConflict{UpdateAll: true}).Create(&actor).Error; err != nil {
		return fmt.Errorf("failed to seed actor: %w", err)
	}

	log.Println("Seeded demo actor.")
	return nil
}

// demoPlayers is the fixed demo candidate set: well-known pros placed
// around San Francisco so proximity searches have something to find.
func demoPlayers() []seedPlayer {
	return []seedPlayer{
		{
			id: "demo-1", name: "Novak Djokovic", skill: 5.5,
			styles: []string{"Singles", "Competitive"}, gender: "Male",
			verified: true,
			bio:      "Former World No. 1, looking for competitive matches",
			slots:    [][3]string{{"Monday", "07:00", "09:00"}, {"Wednesday", "07:00", "09:00"}},
			lat:      37.7694, lng: -122.4862, city: "San Francisco", state: "CA",
		},
		{
			id: "demo-2", name: "Carlos Alcaraz", skill: 5.5,
			styles: []string{"Singles", "Doubles", "Competitive"}, gender: "Male",
			verified: true, newcomer: true,
			bio:   "Rising star, eager to play with local talent",
			slots: [][3]string{{"Tuesday", "17:00", "19:00"}, {"Saturday", "10:00", "12:00"}},
			lat:   37.8044, lng: -122.2712, city: "Oakland", state: "CA",
		},
		{
			id: "demo-3", name: "Iga Swiatek", skill: 5.5,
			styles: []string{"Singles", "Competitive"}, gender: "Female",
			verified: true,
			bio:      "Multiple Grand Slam champion, training in the area",
			slots:    [][3]string{{"Thursday", "08:00", "10:00"}, {"Sunday", "09:00", "11:00"}},
			lat:      37.7599, lng: -122.4148, city: "San Francisco", state: "CA",
		},
		{
			id: "demo-4", name: "Jannik Sinner", skill: 5.5,
			styles: []string{"Singles", "Doubles", "Competitive"}, gender: "Male",
			verified: true, newcomer: true,
			bio:   "Italian rising star, looking for practice partners",
			slots: [][3]string{{"Monday", "15:00", "17:00"}, {"Friday", "15:00", "17:00"}},
			lat:   37.4419, lng: -122.1430, city: "Palo Alto", state: "CA",
		},
		{
			id: "demo-5", name: "Aryna Sabalenka", skill: 5.5,
			styles: []string{"Singles", "Competitive"}, gender: "Female",
			verified: true,
			bio:      "Powerful baseline player, loves competitive tennis",
			slots:    [][3]string{{"Wednesday", "16:00", "18:00"}, {"Saturday", "11:00", "13:00"}},
			lat:      37.8716, lng: -122.2727, city: "Berkeley", state: "CA",
		},
		{
			id: "demo-6", name: "Daniil Medvedev", skill: 5.5,
			styles: []string{"Singles", "Competitive"}, gender: "Male",
			verified: true,
			bio:      "Strategic player with unique style, enjoys long rallies",
			slots:    [][3]string{{"Tuesday", "10:00", "12:00"}, {"Thursday", "10:00", "12:00"}},
			lat:      37.7849, lng: -122.4094, city: "San Francisco", state: "CA",
		},
		{
			id: "demo-7", name: "Coco Gauff", skill: 5.0,
			styles: []string{"Singles", "Doubles", "Social"}, gender: "Female",
			verified: true, newcomer: true,
			bio:   "Young talent with big dreams, loves meeting new players",
			slots: [][3]string{{"Monday", "14:00", "16:00"}, {"Sunday", "14:00", "16:00"}},
			lat:   37.3382, lng: -121.8863, city: "San Jose", state: "CA",
		},
		{
			id: "demo-8", name: "Holger Rune", skill: 5.0,
			styles: []string{"Singles", "Competitive"}, gender: "Male",
			verified: true, newcomer: true,
			bio:   "Danish talent with aggressive style, always up for a challenge",
			slots: [][3]string{{"Friday", "09:00", "11:00"}, {"Sunday", "16:00", "18:00"}},
			lat:   37.5630, lng: -122.3255, city: "San Mateo", state: "CA",
		},
		{
			id: "demo-9", name: "Elena Rybakina", skill: 5.5,
			styles: []string{"Singles", "Competitive"}, gender: "Female",
			verified: true,
			bio:      "Kazakh powerhouse with incredible serve, seeking practice",
			slots:    [][3]string{{"Wednesday", "11:00", "13:00"}, {"Saturday", "08:00", "10:00"}},
			lat:      37.8067, lng: -122.4750, city: "San Francisco", state: "CA",
		},
		{
			id: "demo-10", name: "Stefanos Tsitsipas", skill: 5.0,
			styles: []string{"Singles", "Doubles", "Social"}, gender: "Male",
			verified: true,
			bio:      "Greek player with artistic style, enjoys social tennis too",
			slots:    [][3]string{{"Thursday", "17:00", "19:00"}, {"Sunday", "10:00", "12:00"}},
			lat:      37.7274, lng: -122.4767, city: "Daly City", state: "CA",
		},
	}
}
