package health

type Input struct{}

type Output struct {
	Body Response
}

// Response - состояние сервера и хранилища
type Response struct {
	Status    string `json:"status" example:"OK" doc:"Server status"`
	Store     string `json:"store" enum:"ok,unchecked" example:"ok" doc:"Store reachability"`
	LatencyMs int64  `json:"latencyMs" example:"2" doc:"Store ping time in milliseconds"`
}
