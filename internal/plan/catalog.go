package plan

// Offer is one card of the plan selector.
type Offer struct {
	Plan     Plan        `json:"plan"`
	Name     string      `json:"name"`
	Price    string      `json:"price"`
	Features []string    `json:"features"`
	Limits   QuotaLimits `json:"limits"`
}

// Catalog returns the offers in upgrade order.
func Catalog() []Offer {
	return []Offer{
		{
			Plan:  Free,
			Name:  "Grátis",
			Price: "R$0",
			Features: []string{
				"5 buscas por dia",
				"Salvar até 5 versículos",
				"Histórico das últimas 3 buscas",
			},
			Limits: LimitsFor(Free),
		},
		{
			Plan:  Basic,
			Name:  "Básico",
			Price: "R$9,90/mês",
			Features: []string{
				"Buscas ilimitadas",
				"Salvar até 50 versículos",
				"Histórico de 20 buscas",
				"Suporte prioritário",
			},
			Limits: LimitsFor(Basic),
		},
		{
			Plan:  Pro,
			Name:  "Profissional",
			Price: "R$19,90/mês",
			Features: []string{
				"Tudo do plano Básico",
				"Reflexões mais profundas (IA Pro)",
				"Devocionais personalizados (Em breve)",
				"Salvar versículos ilimitados",
			},
			Limits: LimitsFor(Pro),
		},
	}
}
