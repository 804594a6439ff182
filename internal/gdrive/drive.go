// Package gdrive archives attendance snapshots in Google Drive.
//
// Every class gets one folder under a configured parent; every attendance
// submission uploads the captured frame into its class folder.
package gdrive

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

// Archive wraps the Drive API for folder creation and image upload.
type Archive struct {
	svc      *drive.Service
	parentID string
}

// NewArchive builds a Drive client from a service account key file.
// parentFolderID is the Drive folder that holds the per-class folders.
func NewArchive(ctx context.Context, credentialsFile, parentFolderID string) (*Archive, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading drive credentials: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, drive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("parsing drive credentials: %w", err)
	}

	svc, err := drive.NewService(ctx, option.WithTokenSource(creds.TokenSource))
	if err != nil {
		return nil, fmt.Errorf("creating drive service: %w", err)
	}

	return &Archive{svc: svc, parentID: parentFolderID}, nil
}

// CreateFolder creates a class folder under the parent and returns its ID.
func (a *Archive) CreateFolder(ctx context.Context, name string) (string, error) {
	folder := &drive.File{
		Name:     name,
		MimeType: folderMimeType,
		Parents:  []string{a.parentID},
	}

	created, err := a.svc.Files.Create(folder).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("creating drive folder %q: %w", name, err)
	}
	return created.Id, nil
}

// UploadImage stores an attendance snapshot in the class folder and
// returns the new file's ID.
func (a *Archive) UploadImage(ctx context.Context, folderID, filename string, data []byte) (string, error) {
	file := &drive.File{
		Name:    filename,
		Parents: []string{folderID},
	}

	created, err := a.svc.Files.Create(file).
		Media(bytes.NewReader(data)).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("uploading %q: %w", filename, err)
	}
	return created.Id, nil
}

// FileURL returns the shareable view link for an uploaded file.
func FileURL(fileID string) string {
	return fmt.Sprintf("https://drive.google.com/file/d/%s/view", fileID)
}
