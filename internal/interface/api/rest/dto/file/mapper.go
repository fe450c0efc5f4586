package file

import (
	"cloudy/internal/application/ports"
	"cloudy/internal/domain/file"
	"cloudy/internal/interface/api/rest/dto/user"
)

func ToResponseFile(fDomain file.File) File {
	users := fDomain.Users
	if users == nil {
		users = []string{}
	}
	return File{
		ID:        fDomain.ID,
		Name:      fDomain.Name,
		Extension: fDomain.Extension,
		Type:      string(fDomain.Type),
		Size:      fDomain.Size,
		URL:       fDomain.URL,
		Owner:     user.ToResponseOwner(fDomain.Owner.ID, fDomain.Owner.Summary),
		AccountID: fDomain.AccountID,
		Users:     users,
		CreatedAt: fDomain.CreatedAt,
		UpdatedAt: fDomain.UpdatedAt,
	}
}

func ToResponseFiles(fsDomain file.Files) Files {
	fs := make(Files, len(fsDomain))
	for idx, f := range fsDomain {
		fs[idx] = ToResponseFile(*f)
	}

	return fs
}

func ToResponseUploads(results []ports.UploadResult) UploadResponse {
	out := make([]UploadResult, len(results))
	for i, r := range results {
		out[i] = UploadResult{Name: r.Name}
		if r.Err != nil {
			out[i].Error = r.Err.Error()
			continue
		}
		f := ToResponseFile(*r.File)
		out[i].File = &f
	}
	return UploadResponse{Data: out}
}

func ToResponseAction(r file.ActionResult) ActionResponse {
	out := ActionResponse{Status: string(r.Status)}
	if r.File != nil {
		f := ToResponseFile(*r.File)
		out.File = &f
	}
	return out
}
