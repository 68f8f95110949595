// Package credentials resolves the credentials of remote model repositories.
//
// Repositories are credential consumers identified by a runtime.Identity derived
// from their URL (see IdentityForURL). A Resolver maps such an identity to a set of
// credential attributes, for example
//
//	type=MavenRepository,hostname=repo.example.com,scheme=https,path=releases
//	  -> username=deployer, password=secret
//
// Known attributes are listed as the CredentialKey constants.
package credentials
