package corteservice

import "time"

// PrazoProducaoDias é o prazo padrão combinado com as facções.
const PrazoProducaoDias = 7

// DataPrevistaRecebimento calcula a previsão de volta do corte: data de envio
// mais o prazo padrão, em dias corridos. Fins de semana e feriados não
// deslocam a previsão; a data é informativa, não um vencimento.
func DataPrevistaRecebimento(dataEnvio time.Time) time.Time {
	return dataEnvio.AddDate(0, 0, PrazoProducaoDias)
}
