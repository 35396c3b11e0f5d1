// Package clientcli provides a client library for bucketgate servers.
//
// It uploads files as multipart/form-data and lists the buckets visible to an
// identity. Requests carry a bearer token and, when set, an identity header.
// Profiles in ~/.bucketgate/config.yaml hold connection settings for multiple
// servers.
//
// # Basic Usage
//
//	client, err := clientcli.New(&clientcli.Config{
//		Endpoint: "http://localhost:8787",
//		Token:    "shared-secret",
//		Identity: "user-123",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	results, err := client.Upload(ctx, clientcli.UploadOptions{
//		LocalPath: "./avatar.png",
//		Path:      "images/avatars",
//		Bucket:    "main_r2",
//	})
//
// # Profile Configuration
//
//	profiles, err := clientcli.LoadProfiles(clientcli.DefaultConfigPath())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := profiles.Get("production") // "" selects the current profile
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := clientcli.New(profile.Config())
//
// # Output Formatting
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatUpload(os.Stdout, results)
package clientcli
