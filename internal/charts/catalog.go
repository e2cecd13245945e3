package charts

import (
	"github.com/samber/lo"

	"aceiro/internal/aggregate"
	"aceiro/internal/core"
)

// Card IDs in dashboard order.
const (
	CardByMonth        = "incidents-by-month"
	CardByDay          = "incidents-by-day"
	CardMaterialUsage  = "material-usage"
	CardAreaSplit      = "area-split"
	CardMap            = "incidents-map"
	CardEquipmentUsage = "equipment-usage"
	CardByMunicipality = "incidents-by-municipality"
	CardStaffing       = "staffing"
	CardVehicleUsage   = "vehicle-usage"
)

// Env carries the inputs of a card that do not come from the dataset.
type Env struct {
	Staffing []core.Bucket
	Geo      GeoSpec
}

// Card is one chart of the dashboard. Column is the page column (0 to 2) the
// card is placed in.
type Card struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Type   Type   `json:"type"`
	Column int    `json:"column"`

	build func(ds *core.Dataset, env Env) ChartSpec
}

// Build recomputes the card's aggregate and maps it to a spec.
func (c Card) Build(ds *core.Dataset, env Env) ChartSpec {
	return c.build(ds, env)
}

var cards = []Card{
	{
		ID: CardByMonth, Title: "Quantidade de Ocorrências por Mês", Type: TypeBar, Column: 0,
		build: func(ds *core.Dataset, _ Env) ChartSpec {
			return Bar(CardByMonth, "Quantidade de Ocorrências por Mês", aggregate.ByMonth(ds))
		},
	},
	{
		ID: CardByDay, Title: "Quantidade de Ocorrências por Dia", Type: TypeLine, Column: 0,
		build: func(ds *core.Dataset, _ Env) ChartSpec {
			return Line(CardByDay, "Quantidade de Ocorrências por Dia", aggregate.ByDay(ds))
		},
	},
	{
		ID: CardMaterialUsage, Title: "Uso dos Materiais", Type: TypePie, Column: 0,
		build: func(ds *core.Dataset, _ Env) ChartSpec {
			return Pie(CardMaterialUsage, "Uso dos Materiais", aggregate.MaterialUsage(ds))
		},
	},
	{
		ID: CardAreaSplit, Title: "Ocorrências Urbano/Rural", Type: TypePie, Column: 0,
		build: func(ds *core.Dataset, _ Env) ChartSpec {
			return Pie(CardAreaSplit, "Ocorrências Urbano/Rural", aggregate.ByArea(ds))
		},
	},
	{
		ID: CardMap, Title: "Mapa de Ocorrências", Type: TypeChoropleth, Column: 1,
		build: func(_ *core.Dataset, env Env) ChartSpec {
			return Choropleth(CardMap, "Mapa de Ocorrências", env.Geo)
		},
	},
	{
		ID: CardEquipmentUsage, Title: "Uso dos Equipamentos", Type: TypePie, Column: 1,
		build: func(ds *core.Dataset, _ Env) ChartSpec {
			return Pie(CardEquipmentUsage, "Uso dos Equipamentos", aggregate.EquipmentUsage(ds))
		},
	},
	{
		ID: CardByMunicipality, Title: "Ocorrências por Município", Type: TypeBar, Column: 1,
		build: func(ds *core.Dataset, _ Env) ChartSpec {
			return Bar(CardByMunicipality, "Ocorrências por Município", aggregate.ByMunicipality(ds))
		},
	},
	{
		ID: CardStaffing, Title: "Quantidade de Efetivos", Type: TypeBar, Column: 2,
		build: func(_ *core.Dataset, env Env) ChartSpec {
			return Bar(CardStaffing, "Quantidade de Efetivos", aggregate.Staffing(env.Staffing))
		},
	},
	{
		ID: CardVehicleUsage, Title: "Uso das Viaturas", Type: TypePie, Column: 2,
		build: func(ds *core.Dataset, _ Env) ChartSpec {
			return Pie(CardVehicleUsage, "Uso das Viaturas", aggregate.VehicleUsage(ds))
		},
	},
}

// Cards returns every dashboard card in page order.
func Cards() []Card {
	return append([]Card(nil), cards...)
}

// CardsInColumn returns the cards placed in column col, in page order.
func CardsInColumn(col int) []Card {
	return lo.Filter(cards, func(c Card, _ int) bool { return c.Column == col })
}

// FindCard looks a card up by ID.
func FindCard(id string) (Card, bool) {
	return lo.Find(cards, func(c Card) bool { return c.ID == id })
}

// DefaultStaffing is the personnel table shown when none is configured.
func DefaultStaffing() []core.Bucket {
	return []core.Bucket{
		{Key: "Bombeiros", Count: 50},
		{Key: "Brigadistas", Count: 25},
		{Key: "Voluntários", Count: 50},
		{Key: "Força Nacional", Count: 50},
		{Key: "Outros", Count: 25},
	}
}
