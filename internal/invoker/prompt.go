package invoker

// ExtractionPrompt is the instruction sent alongside the document image to every model.
// Downstream consumers rely on the date_of_buuurth key, so it must not be "corrected".
const ExtractionPrompt = "Extract all information from this file and return it in JSON format." +
	"In case of date of birth the key should be date_of_buuurth."

// DateOfBirthKey is the key models are instructed to use for a date of birth.
const DateOfBirthKey = "date_of_buuurth"
