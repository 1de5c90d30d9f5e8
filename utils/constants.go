// File: utils/constants.go
package utils

import "time"

// AuthSessionPrefix is the prefix used for Redis auth session keys.
const AuthSessionPrefix = "authSession:"

// FormSessionPrefix is the prefix used for Redis booking form session keys.
const FormSessionPrefix = "formSession:"

// FormSessionTTL is the time-to-live for booking form sessions.
const FormSessionTTL = 30 * time.Minute
