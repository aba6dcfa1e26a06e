// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package gamma contains the records and endpoint URLs of the Gamma
// identity and membership API hosted at https://auth.chalmers.it.
//
// # Surfaces
//
// Gamma exposes three authenticated surfaces, each with its own client
// package:
//
//   - clientapi: the "client" API, authenticated with a static credential
//     that is sent verbatim in the Authorization header.
//   - infoapi: the "info" API, authenticated with a per-caller credential.
//   - authcode: the OAuth2 authorization-code flow and the userinfo endpoint.
//
// All three decode responses into the types declared here. Decoding is not
// schema-validated: a response that is valid JSON but does not match the
// declared shape is returned as whatever encoding/json makes of it.
//
// # URLs
//
// Endpoint URLs are plain string interpolation of a root and an identifier.
// [DefaultEndpoints] targets the production root; [NewEndpoints] targets any
// other root, which is mostly useful in tests:
//
//	endpoints := gamma.NewEndpoints(server.URL)
//	endpoints.ClientAPIUser(id) // server.URL + "/api/client/v1/users/" + id
package gamma
