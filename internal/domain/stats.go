package domain

// StatusCount — гистограмма заявок по статусам для дашборда и статус-репорта
type StatusCount map[LoanStatus]int64

// TopCustomer — строка рейтинга клиентов по числу одобренных кредитов
type TopCustomer struct {
	CustomerName  string `json:"customer_name"`
	ApprovedCount int64  `json:"approved_count"`
}
