package dto

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	ResumeText   string `json:"resumeText"`
	ResumePdf    string `json:"resumePdf"`
	Institution  string `json:"institution"`
	Department   string `json:"department"`
	Year         string `json:"year"`
	Availability string `json:"availability"`
}

// RegisterForm is what the user fills in before the resume is processed.
type RegisterForm struct {
	FullName        string `json:"fullName" form:"fullName"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
	Institution     string `json:"institution" form:"institution"`
	Department      string `json:"department" form:"department"`
	Year            string `json:"year" form:"year"`
	Availability    string `json:"availability" form:"availability"`
}

func (f RegisterForm) ToRequest(resumeText, resumePdf string) RegisterRequest {
	return RegisterRequest{
		FullName:     f.FullName,
		Email:        f.Email,
		Password:     f.Password,
		ResumeText:   resumeText,
		ResumePdf:    resumePdf,
		Institution:  f.Institution,
		Department:   f.Department,
		Year:         f.Year,
		Availability: f.Availability,
	}
}
