package client

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/url"
	"strconv"
)

func (q DirectoryQuery) encode() string {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.CollegeName != "" {
		v.Set("collegeName", q.CollegeName)
	}
	if q.GraduationYear > 0 {
		v.Set("graduationYear", strconv.Itoa(q.GraduationYear))
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

func encodeProfile(in ProfileUpdate) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"fullName", in.FullName},
		{"collegeName", in.CollegeName},
		{"collegeAddress", in.CollegeAddress},
		{"fieldOfStudy", in.FieldOfStudy},
		{"graduationYear", strconv.Itoa(in.GraduationYear)},
	}
	optional := []struct {
		name  string
		value *string
	}{
		{"bio", in.Bio},
		{"linkedinUrl", in.LinkedInURL},
		{"githubUrl", in.GitHubURL},
		{"portfolioUrl", in.PortfolioURL},
	}
	for _, o := range optional {
		if o.value != nil {
			fields = append(fields, [2]string{o.name, *o.value})
		}
	}
	for _, name := range in.Clear {
		fields = append(fields, [2]string{"remove_" + name, "true"})
	}

	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("client: encode profile: %w", err)
		}
	}
	for name, file := range in.Replace {
		part, err := w.CreateFormFile(name, file.Name)
		if err != nil {
			return nil, "", fmt.Errorf("client: encode profile: %w", err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", fmt.Errorf("client: encode profile: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("client: encode profile: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
