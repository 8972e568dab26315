// Package auth implements the credential and access-control subsystem of the
// Event Board application: bcrypt credential verification, JWT issuance and
// validation, cookie/bearer token delivery, and the request guard that keeps
// unauthenticated traffic out of the backend.
//
// Verification is stateless by design. The guard consults nothing but the
// token itself (signature plus embedded claims), so protected requests never
// touch the credential store and no session table exists. The flip side is
// that a token stays valid until its natural expiry even after the cookie
// that carried it has been deleted.
//
// Surfaces:
//   - Routes are tagged SurfacePage or SurfaceAPI when they are registered.
//     The tag decides how a freshly minted token travels (HTTP-only cookie vs
//     JSON body) and how the guard rejects a request (redirect to /login vs
//     structured 401). The token itself is identical on both surfaces.
package auth
