package parser

// requirementsSchema is the CUE schema every requirements document must
// satisfy before decoding. Definitions are closed, so unknown fields are
// rejected with a position-carrying error instead of being silently dropped.
// Interceptor declarations live under requirements; the top-level spelling is
// also accepted.
const requirementsSchema = `
#Requirements: {
	project: {
		name: string & !=""
		type: "web" | "rest" | "batch" | "batch_resident" | "mom_messaging" | "http_messaging"
	}

	requirements?: {
		database?: {
			enabled?:     bool
			type?:        string & !=""
			transaction?: "none" | "required"
		}
		authentication?: {
			enabled?:     bool
			type?:        "session" | "token"
			login_check?: bool
		}
		security?: {
			csrf_protection?: bool
			secure_headers?:  bool
			cors?:            bool
		}
		session?: {
			enabled?: bool
			store?:   "http_session" | "db"
		}
		logging?: {
			access_log?: bool
			sql_log?:    bool
		}
		health_check?: {
			enabled?: bool
		}
		interceptors?: [...#Interceptor]
	}

	interceptors?: [...#Interceptor]
}

#Interceptor: {
	name:         string & !=""
	class?:       string & !=""
	description?: string
	order?:       int & >=0
}
`
