package model

const genericErrorMessage = "internal server error. contact our support with the reason code for assistance"

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewAPIError(errReason error) APIError {
	switch errReason.Error() {
	case "RATE_LIMIT_REACHED":
		return APIError{
			Code:    "RATE_LIMIT_REACHED",
			Message: "rate limit reached. wait few minutes and try again",
		}

	case "TOKEN_NOT_CONFIGURED":
		return APIError{
			Code:    "TOKEN_NOT_CONFIGURED",
			Message: "GITHUB_TOKEN not configured on server",
		}

	case "INVALID_QUERY":
		return APIError{
			Code:    "INVALID_QUERY",
			Message: "invalid query parameters. username is required, period must be between 7 and 3650 and max_repos between 1 and 500",
		}

	case "RATE_LIMITER_ERROR", "INVALID_DATA_FOUND", "FETCH_ERROR":
		return APIError{
			Code:    errReason.Error(),
			Message: genericErrorMessage,
		}

	default:
		return APIError{
			Code:    "GENERIC_ERROR",
			Message: genericErrorMessage,
		}
	}
}
