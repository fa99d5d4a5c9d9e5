package assistant

// Command untuk tiap endpoint. Validation tags are checked by the transport
// before a command reaches the service.

type AskCommand struct {
	SessionID  string `json:"-"`
	Question   string `json:"question" validate:"required"`
	PolicyDate string `json:"policyDate"`
	UserInfo   string `json:"userInfo"`
}

type UploadCommand struct {
	SessionID   string
	Filename    string
	ContentType string
	Data        []byte
}

type ClaimCommand struct {
	SessionID          string `json:"-"`
	ClaimType          string `json:"claimType" validate:"required"`
	ExpenseDescription string `json:"expenseDescription" validate:"required"`
	HospitalPreference string `json:"hospitalPreference"`
	// only the presence of a bill is used
	BillPresent bool `json:"-"`
}

type RecommendationCommand struct {
	SessionID        string `json:"-"`
	Age              string `json:"age" validate:"required"`
	Gender           string `json:"gender" validate:"required"`
	HealthConditions string `json:"healthConditions"`
	Coverage         string `json:"coverage" validate:"required"`
	Budget           string `json:"budget" validate:"required"`
}

type WellnessCommand struct {
	SessionID          string `json:"-"`
	Goal               string `json:"wellnessGoal"`
	HealthDataFilename string `json:"healthDataFilename"`
}

type BlockchainCommand struct {
	Action   string `json:"action" validate:"required"`
	RecordID string `json:"recordId"`
}

type LoginCommand struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}
