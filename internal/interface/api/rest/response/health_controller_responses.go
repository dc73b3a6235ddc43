package response

type Root struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type Health struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

var (
	RootRunning = Root{Message: "Order Management System API", Status: "running"}

	Healthy   = Health{Status: "healthy", Database: "connected"}
	Unhealthy = Health{Status: "unhealthy", Database: "disconnected"}
)
