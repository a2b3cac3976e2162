package rest

type startRequest struct {
	TargetLanguage string `json:"target_language"`
	Difficulty     string `json:"difficulty"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type errorResponse struct {
	Error string `json:"error"`
}
