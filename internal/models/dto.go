package models

type RegisterRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Role     string `json:"user_type" form:"user_type"`
}

type LoginRequest struct {
	Identifier string `json:"username" form:"username" validate:"required"`
	Password   string `json:"password" form:"password" validate:"required"`
	Role       string `json:"role" form:"role" validate:"omitempty,user_role"`
}

type ResendVerificationRequest struct {
	UsernameOrEmail string `json:"username_or_email" form:"username_or_email"`
}

type AccountCreateRequest struct {
	Username string `json:"username" form:"username" validate:"required,max=150"`
	Email    string `json:"email" form:"email" validate:"required,email,max=254"`
	Password string `json:"password" form:"password" validate:"required"`
	Role     string `json:"user_type" form:"user_type" validate:"omitempty,user_role"`
}

type QuestionCreateRequest struct {
	Text       string `json:"question_text" form:"question_text" validate:"required"`
	Subject    string `json:"subject" form:"subject" validate:"max=100"`
	Topic      string `json:"topic" form:"topic" validate:"max=100"`
	Difficulty string `json:"difficulty" form:"difficulty" validate:"omitempty,difficulty_level"`
}

type QuestionUpdateRequest struct {
	Text       *string `json:"question_text" form:"question_text" validate:"omitempty,min=1"`
	Subject    *string `json:"subject" form:"subject" validate:"omitempty,max=100"`
	Topic      *string `json:"topic" form:"topic" validate:"omitempty,max=100"`
	Difficulty *string `json:"difficulty" form:"difficulty" validate:"omitempty,difficulty_level"`
}

type QuestionFilterRequest struct {
	Subject    string `form:"subject"`
	Topic      string `form:"topic"`
	Difficulty string `form:"difficulty"`
	Query      string `form:"q"`
}

type TakeQuestionRequest struct {
	AnswerText string `json:"answer_text" form:"answer_text"`
}

type GradeSubmissionRequest struct {
	Score    *int   `json:"score" form:"score"`
	Feedback string `json:"feedback" form:"feedback"`
}
