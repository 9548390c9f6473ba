// Package simg provides Go client bindings for the simg object storage
// service, which stores binary payloads (typically images) as named objects
// grouped into folders.
//
// The package offers two levels of abstraction:
//
//   - [Client] sends one command per call to the simg HTTP endpoint and
//     translates failures into the error taxonomy below.
//
//   - The mirror subpackage uses a Client as the primary store and replicates
//     writes to MinIO, AWS S3 or Azure Blob Storage replicas.
//
// # Quick Start
//
//	client, err := simg.NewClient(simg.ClientConfig{
//	    BaseURL: "https://img.example.com",
//	    APIKey:  os.Getenv("SIMG_API_KEY"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	put, err := simg.NewPutObjectCommand("avatars", "alice.png", data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	payload, err := client.Send(ctx, put)
//
//	del, _ := simg.NewDeleteObjectCommand("avatars", "alice.png")
//	name, err := client.Delete(ctx, del)
//
// # Errors
//
// Failures belong to one of four groups:
//
//	ErrConfiguration     ErrConnectionConfiguration, ErrCommandValidation
//	ErrUnsupportedCommand *UnsupportedCommandError
//	ErrRemote            ErrInvalidCredential, ErrObjectNotFound,
//	                     ErrInvalidFolder, ErrInvalidFilename
//	transport            the underlying error, unchanged (*StatusError for
//	                     statuses without a domain meaning)
//
// Test with errors.Is:
//
//	if errors.Is(err, simg.ErrObjectNotFound) { ... }
//
// The client never retries. Timeouts and cancellation come from the context
// and from the Doer given to [WithHTTPClient].
package simg
