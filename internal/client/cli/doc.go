// Package cli implements authctl, the operator command-line client of
// gophgate.
//
// Commands:
//
//	signup [-email e] [-role r]   create an account (password prompted)
//	signin [-email e]             obtain a bearer token (printed to stdout)
//	whoami                        show the claims of the current token
//	users list [-page n] [-limit n]
//	users get <id>
//	hash [-alg bcrypt|argon2id]   hash a prompted password offline
//	ping                          check that the AuthService is serving
//
// Remote commands use the token from -token or GOPHGATE_TOKEN.
package cli
