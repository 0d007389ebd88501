package discovery

import (
	"context"
	"encoding/json"
	"math"
	"sort"

	"github.com/oggyb/tennis-connect/internal/db"
	svcErr "github.com/oggyb/tennis-connect/internal/errors"
	"github.com/oggyb/tennis-connect/internal/model"
	"gorm.io/gorm"
)

// milesPerDegree is a rough conversion from coordinate degrees;
// adequate for the demo directory's advisory distances.
const milesPerDegree = 69.0

// demoResultLimit caps a single demo search.
const demoResultLimit = 50

// DemoDirectory answers searches from the locally seeded player set.
// It is only used in the explicitly selected offline/demo mode, never
// as an automatic substitute when the live directory fails.
type DemoDirectory struct {
	db *gorm.DB
}

func NewDemoDirectory(database *gorm.DB) *DemoDirectory {
	return &DemoDirectory{db: database}
}

func (d *DemoDirectory) Search(ctx context.Context, origin model.Location, radius float64, filters Filters) ([]model.Player, error) {
	var rows []db.DirectoryPlayer
	if err := d.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, svcErr.Unavailable(err)
	}

	players := make([]model.Player, 0, len(rows))
	for _, row := range rows {
		p := playerFromRow(row)
		dLat := p.Location.Latitude - origin.Latitude
		dLng := p.Location.Longitude - origin.Longitude
		p.Distance = math.Sqrt(dLat*dLat+dLng*dLng) * milesPerDegree
		if p.Distance > radius {
			continue
		}
		if !filters.Match(&p) {
			continue
		}
		players = append(players, p)
	}

	sort.Slice(players, func(i, j int) bool { return players[i].Distance < players[j].Distance })
	if len(players) > demoResultLimit {
		players = players[:demoResultLimit]
	}
	if len(players) == 0 {
		return nil, svcErr.ErrNotFound
	}
	return players, nil
}

func playerFromRow(row db.DirectoryPlayer) model.Player {
	p := model.Player{
		ID:          row.ID,
		Name:        row.Name,
		SkillLevel:  row.SkillLevel,
		Gender:      row.Gender,
		IsVerified:  row.IsVerified,
		IsNewToArea: row.IsNewToArea,
		Bio:         row.Bio,
		PhotoURL:    row.PhotoURL,
		Location: model.Location{
			Latitude:  row.Latitude,
			Longitude: row.Longitude,
			City:      row.City,
			State:     row.State,
		},
	}
	if row.GameStyles != "" {
		_ = json.Unmarshal([]byte(row.GameStyles), &p.GameStyles)
	}
	if row.TimeSlots != "" {
		_ = json.Unmarshal([]byte(row.TimeSlots), &p.PreferredTimes)
	}
	return p
}
