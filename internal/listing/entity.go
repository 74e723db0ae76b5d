// AngelaMos | 2026
// entity.go

package listing

import (
	"time"

	"github.com/lib/pq"
)

const (
	StatusBozza      = "bozza"
	StatusInAttesa   = "in_attesa"
	StatusPubblicato = "pubblicato"
	StatusScaduto    = "scaduto"
	StatusRifiutato  = "rifiutato"
)

const (
	TypeVendita      = "vendita"
	TypeAffittoBreve = "affitto_breve"
	TypeAffittoLungo = "affitto_lungo"
	TypeCercasi      = "cercasi"
)

const (
	CategoryAppartamento = "appartamento"
	CategoryVilla        = "villa"
	CategoryTerreno      = "terreno"
	CategoryCommerciale  = "commerciale"
	CategoryAltro        = "altro"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusBozza, StatusInAttesa, StatusPubblicato,
		StatusScaduto, StatusRifiutato:
		return true
	}
	return false
}

func ValidType(t string) bool {
	switch t {
	case TypeVendita, TypeAffittoBreve, TypeAffittoLungo, TypeCercasi:
		return true
	}
	return false
}

func ValidCategory(c string) bool {
	switch c {
	case CategoryAppartamento, CategoryVilla, CategoryTerreno,
		CategoryCommerciale, CategoryAltro:
		return true
	}
	return false
}

// EnergyClasses follows the Italian APE scale.
var EnergyClasses = []string{"A+", "A", "B", "C", "D", "E", "F", "G"}

func ValidEnergyClass(c string) bool {
	for _, e := range EnergyClasses {
		if c == e {
			return true
		}
	}
	return false
}

// Features is the closed amenity tag set offered on the listing form.
var Features = []string{
	"balcone",
	"terrazzo",
	"giardino",
	"piscina",
	"garage",
	"cantina",
	"ascensore",
	"aria_condizionata",
	"riscaldamento_autonomo",
	"porta_blindata",
	"allarme",
	"wifi",
	"cucina_attrezzata",
	"arredato",
	"parcheggio",
}

var featureSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Features))
	for _, f := range Features {
		m[f] = struct{}{}
	}
	return m
}()

func ValidFeature(f string) bool {
	_, ok := featureSet[f]
	return ok
}

// Provinces is the fixed Italian province list listings are addressed with.
var Provinces = []string{
	"Agrigento", "Alessandria", "Ancona", "Aosta", "Arezzo", "Ascoli Piceno",
	"Asti", "Avellino", "Bari", "Barletta-Andria-Trani", "Belluno", "Benevento",
	"Bergamo", "Biella", "Bologna", "Bolzano", "Brescia", "Brindisi", "Cagliari",
	"Caltanissetta", "Campobasso", "Caserta", "Catania", "Catanzaro", "Chieti",
	"Como", "Cosenza", "Cremona", "Crotone", "Cuneo", "Enna", "Fermo", "Ferrara",
	"Firenze", "Foggia", "Forlì-Cesena", "Frosinone", "Genova", "Gorizia",
	"Grosseto", "Imperia", "Isernia", "La Spezia", "L'Aquila", "Latina",
	"Lecce", "Lecco", "Livorno", "Lodi", "Lucca", "Macerata", "Mantova",
	"Massa-Carrara", "Matera", "Messina", "Milano", "Modena", "Monza e Brianza",
	"Napoli", "Novara", "Nuoro", "Oristano", "Padova", "Palermo", "Parma",
	"Pavia", "Perugia", "Pesaro e Urbino", "Pescara", "Piacenza", "Pisa",
	"Pistoia", "Pordenone", "Potenza", "Prato", "Ragusa", "Ravenna",
	"Reggio Calabria", "Reggio Emilia", "Rieti", "Rimini", "Roma", "Rovigo",
	"Salerno", "Sassari", "Savona", "Siena", "Siracusa", "Sondrio",
	"Sud Sardegna", "Taranto", "Teramo", "Terni", "Torino", "Trapani",
	"Trento", "Treviso", "Trieste", "Udine", "Varese", "Venezia",
	"Verbano-Cusio-Ossola", "Vercelli", "Verona", "Vibo Valentia", "Vicenza",
	"Viterbo",
}

var provinceSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Provinces))
	for _, p := range Provinces {
		m[p] = struct{}{}
	}
	return m
}()

func ValidProvince(p string) bool {
	_, ok := provinceSet[p]
	return ok
}

type Listing struct {
	ID          string         `db:"id"`
	OwnerID     string         `db:"owner_id"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	Type        string         `db:"type"`
	Category    string         `db:"category"`
	Price       float64        `db:"price"`
	Location    string         `db:"location"`
	City        string         `db:"city"`
	Province    string         `db:"province"`
	Address     *string        `db:"address"`
	Images      pq.StringArray `db:"images"`
	Surface     *int           `db:"surface"`
	Rooms       *int           `db:"rooms"`
	Bathrooms   *int           `db:"bathrooms"`
	Floor       *int           `db:"floor"`
	EnergyClass *string        `db:"energy_class"`
	Features    pq.StringArray `db:"features"`
	Status      string         `db:"status"`
	Views       int64          `db:"views"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	PublishedAt *time.Time     `db:"published_at"`
	ExpiresAt   *time.Time     `db:"expires_at"`
}

func (l *Listing) IsOwnedBy(userID string) bool {
	return userID != "" && l.OwnerID == userID
}

// IsLive reports whether the listing is publicly visible right now. A
// pubblicato row past its expiry is treated as gone even before the sweep
// flips it to scaduto.
func (l *Listing) IsLive(now time.Time) bool {
	if l.Status != StatusPubblicato {
		return false
	}
	return l.ExpiresAt == nil || now.Before(*l.ExpiresAt)
}

// OwnerCanSetStatus enumerates the transitions an owner may drive. Owners
// move listings between draft and review; only moderation publishes.
func OwnerCanSetStatus(current, next string) bool {
	if current == next {
		return true
	}

	switch current {
	case StatusBozza:
		return next == StatusInAttesa
	case StatusInAttesa:
		return next == StatusBozza
	case StatusPubblicato:
		// Editing a live listing pulls it off the site until moderation
		// clears the new revision.
		return next == StatusBozza || next == StatusInAttesa
	case StatusRifiutato, StatusScaduto:
		// Resubmission path: fix it up as a draft or send it straight
		// back to review.
		return next == StatusBozza || next == StatusInAttesa
	}
	return false
}
