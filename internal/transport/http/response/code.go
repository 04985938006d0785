package response

import "net/http"

// 对外错误文案集中在这里
const (
	MsgValidation         = "Validation failed"
	MsgInvalidBody        = "Invalid request body"
	MsgUnauthorized       = "Unauthorized"
	MsgForbidden          = "Forbidden"
	MsgUserNotFound       = "User not found"
	MsgEmailExists        = "Email already exists"
	MsgInvalidCredentials = "Invalid email or password"
	MsgNoValidFields      = "No valid fields to update"
	MsgRoleChange         = "Only admin can change role"
	MsgInternal           = "Internal server error"
)

var CodeMsgMap = map[int]string{
	http.StatusBadRequest:            "Bad Request",
	http.StatusUnauthorized:          MsgUnauthorized,
	http.StatusForbidden:             MsgForbidden,
	http.StatusNotFound:              "Not Found",
	http.StatusConflict:              "Conflict",
	http.StatusRequestEntityTooLarge: "Request body too large",
	http.StatusServiceUnavailable:    "Server busy",
	http.StatusGatewayTimeout:        "Timeout",
	http.StatusInternalServerError:   MsgInternal,
}

// 成功文案
const (
	MsgSignedUp       = "User registered"
	MsgSignedIn       = "User signed in"
	MsgSignedOut      = "User signed out"
	MsgUsersListed    = "Successfully retrieved users"
	MsgUserFetched    = "Successfully retrieved user"
	MsgUserUpdated    = "User updated successfully"
	MsgUserDeleted    = "User deleted successfully"
	MsgAdminSignupOff = "Admin signup is disabled"
)
