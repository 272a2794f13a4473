package domain

// DashboardMetrics consolida os indicadores exibidos na visão geral:
// volumes enviados/recebidos e o percentual geral de defeitos.
type DashboardMetrics struct {
	TotalFaccoes           int     `json:"totalFaccoes"`
	CortesEnviados         int     `json:"cortesEnviados"`
	CortesRecebidos        int     `json:"cortesRecebidos"`
	PecasRecebidas         int     `json:"pecasRecebidas"`
	PecasDefeito           int     `json:"pecasDefeito"`
	PercentualGeralDefeito float64 `json:"percentualGeralDefeito"`
}
