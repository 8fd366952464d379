package web

import (
	"html/template"
	"strings"

	"video-to-mp3/domain/conversion"
)

// pageData feeds the single page template
type pageData struct {
	Bitrates []conversion.Bitrate
	Selected conversion.Bitrate
	Accept   string
	Error    string
}

func newPageData(selected conversion.Bitrate, errMsg string) pageData {
	accept := make([]string, 0, len(conversion.AllowedExtensions))
	for _, ext := range conversion.AllowedExtensions {
		accept = append(accept, "."+ext)
	}
	return pageData{
		Bitrates: conversion.Bitrates(),
		Selected: selected,
		Accept:   strings.Join(accept, ","),
		Error:    errMsg,
	}
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Video → MP3</title>
<style>
  body { font-family: system-ui, sans-serif; max-width: 40rem; margin: 2rem auto; padding: 0 1rem; }
  .error { background: #fdecea; color: #611a15; padding: .75rem 1rem; border-radius: .25rem; }
  .done { background: #edf7ed; color: #1e4620; padding: .75rem 1rem; border-radius: .25rem; }
  video { width: 100%; margin: 1rem 0; display: none; }
  .busy { display: none; margin-left: .5rem; }
  form.busy-on .busy { display: inline; }
  label { display: block; margin-top: 1rem; }
  footer { margin-top: 2rem; color: #666; font-size: .85rem; }
</style>
</head>
<body>
<h1>Convert video (.mov, .mp4, …) to MP3</h1>
{{if .Error}}<p class="error" role="alert">{{.Error}}</p>{{end}}
<p id="done" class="done" role="status" hidden></p>
<form id="convert" method="post" action="/convert" enctype="multipart/form-data">
  <label for="file">Upload a video file</label>
  <input id="file" type="file" name="file" accept="{{.Accept}}" required>
  <video id="preview" controls></video>
  <label for="bitrate">MP3 bitrate</label>
  <select id="bitrate" name="bitrate">
    {{- range .Bitrates}}
    <option value="{{.}}"{{if eq . $.Selected}} selected{{end}}>{{.}}</option>
    {{- end}}
  </select>
  <p>
    <button type="submit">Convert to MP3</button>
    <span class="busy" aria-live="polite">Extracting audio…</span>
  </p>
</form>
<footer>Powered by ffmpeg.</footer>
<script>
  const form = document.getElementById("convert");
  const input = document.getElementById("file");
  const preview = document.getElementById("preview");
  const done = document.getElementById("done");
  function doneFile() {
    const prefix = "v2m_done=";
    const parts = document.cookie.split("; ");
    for (let i = 0; i < parts.length; i++) {
      if (parts[i].indexOf(prefix) === 0) {
        return decodeURIComponent(parts[i].substring(prefix.length).split("+").join(" "));
      }
    }
    return null;
  }
  input.addEventListener("change", () => {
    const f = input.files[0];
    if (!f) { preview.style.display = "none"; return; }
    preview.src = URL.createObjectURL(f);
    preview.style.display = "block";
  });
  form.addEventListener("submit", () => {
    done.hidden = true;
    form.classList.add("busy-on");
    form.querySelector("button").disabled = true;
    // the download response does not navigate away, so re-enable when it lands
    setTimeout(function poll() {
      const name = doneFile();
      if (name !== null) {
        document.cookie = "v2m_done=; Max-Age=0; Path=/";
        done.textContent = "Done! Your MP3 " + name + " is downloading.";
        done.hidden = false;
        form.classList.remove("busy-on");
        form.querySelector("button").disabled = false;
        return;
      }
      setTimeout(poll, 500);
    }, 500);
  });
</script>
</body>
</html>
`))
