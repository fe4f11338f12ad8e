// internal/profile/dto.go

package profile

// UpdateProfileRequest is a partial update; nil fields are left unchanged
type UpdateProfileRequest struct {
	Name              *string        `json:"name" validate:"omitempty,min=1,max=100"`
	Bio               *string        `json:"bio" validate:"omitempty,max=500"`
	Phone             *string        `json:"phone" validate:"omitempty,e164"`
	Age               *int           `json:"age" validate:"omitempty,min=16,max=100"`
	Gender            *string        `json:"gender" validate:"omitempty,oneof=male female other prefer_not_to_say"`
	Location          *LocationInput `json:"location"`
	FitnessLevel      *string        `json:"fitnessLevel" validate:"omitempty,oneof=beginner intermediate advanced professional"`
	FitnessGoals      []string       `json:"fitnessGoals" validate:"omitempty,max=7,unique,dive,oneof=weight_loss muscle_gain endurance strength flexibility toning general_fitness"`
	PreferredWorkouts []string       `json:"preferredWorkouts" validate:"omitempty,max=11,unique,dive,oneof=cardio weight_lifting yoga pilates crossfit functional hiit swimming running cycling other"`
	Availability      []TimeSlot     `json:"availability" validate:"omitempty,max=21,dive"`
	PreferredGender   *string        `json:"preferredGender" validate:"omitempty,oneof=male female any"`
	PreferredAgeMin   *int           `json:"preferredAgeMin" validate:"omitempty,min=16,max=100"`
	PreferredAgeMax   *int           `json:"preferredAgeMax" validate:"omitempty,min=16,max=100"`
}

// LocationInput sets the training location
type LocationInput struct {
	Coordinates *[2]float64 `json:"coordinates" validate:"required"`
	Address     string      `json:"address" validate:"max=200"`
}

// UpdateImageRequest points the profile at an uploaded image
type UpdateImageRequest struct {
	ImageURL string `json:"imageUrl" validate:"required,url"`
}

// UploadURLRequest asks for a presigned upload URL
type UploadURLRequest struct {
	ContentType string `json:"contentType" validate:"required,oneof=image/jpeg image/png image/webp"`
}

// RegisterDeviceRequest registers a push notification token
type RegisterDeviceRequest struct {
	Token string `json:"token" validate:"required,min=10,max=4096"`
}
