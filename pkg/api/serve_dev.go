package api

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/exp/slices"

	"github.com/modpack-dev/modpack/internal/hot"
	"github.com/modpack-dev/modpack/internal/importmap"
	"github.com/modpack-dev/modpack/internal/logger"
	"github.com/modpack-dev/modpack/pkg/plugin"
)

const socketRoute = "/modpack-socket"
const clientRoute = "/_modpack/client.js"

type PackMessage struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

type ClientConnection struct {
	conn  *websocket.Conn
	mutex *sync.Mutex
}

type cachedFile struct {
	contents    []byte
	contentType string
}

type DevServer struct {
	Host string
	Port uint16

	root          string
	importMapPath string
	importMapJSON string
	options       DevServeOptions

	server       *http.Server
	clientsMutex *sync.Mutex
	clients      []*ClientConnection

	cacheMutex *sync.Mutex
	fileCache  map[string]*cachedFile

	// source file on disk -> cache keys built from it
	watchIndex map[string][]string

	watcher      *notifyWatcher
	closeChannel chan os.Signal
	timeout      time.Duration
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

var fileUnits = []string{"B", "KB", "MB", "GB"}

func formatFileSize(size int) (float64, string) {
	var i = 0
	var fsize = float64(size)
	for fsize > 1000 && i < len(fileUnits)-1 {
		fsize = fsize / 1000
		i++
	}
	return fsize, fileUnits[i]
}

// NewDevServer builds the server but does not start it. The import map is
// read from disk here so a malformed map fails before anything is listening.
func NewDevServer(opts DevServeOptions) (*DevServer, error) {
	host := opts.Host
	if host == "" {
		host = "0.0.0.0"
	}
	port := opts.Port
	if port == 0 {
		port = 8081
	}
	root := opts.Root
	if root == "" {
		root = "."
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	mapName := opts.ImportMapPath
	if mapName == "" {
		mapName = "importmap.json"
	}
	mapPath := filepath.Join(root, mapName)

	d := &DevServer{
		Host:          host,
		Port:          port,
		root:          root,
		importMapPath: mapPath,
		options:       opts,
		clientsMutex:  &sync.Mutex{},
		clients:       make([]*ClientConnection, 0, 64),
		cacheMutex:    &sync.Mutex{},
		fileCache:     make(map[string]*cachedFile),
		watchIndex:    make(map[string][]string),
		closeChannel:  make(chan os.Signal, 1),
		timeout:       30 * time.Second,
	}
	if err := d.loadImportMap(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *DevServer) loadImportMap() error {
	data, err := os.ReadFile(d.importMapPath)
	if errors.Is(err, os.ErrNotExist) {
		d.importMapJSON = ""
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := importmap.Parse(data); err != nil {
		return fmt.Errorf("%s: %s", d.importMapPath, err)
	}
	d.importMapJSON = string(data)
	return nil
}

// Run serves until the process receives a termination signal or Dispose is
// called.
func (d *DevServer) Run() error {
	mux := http.NewServeMux()
	mux.HandleFunc(socketRoute, d.socketHandler)
	mux.HandleFunc(clientRoute, d.clientHandler)
	mux.HandleFunc("/", d.resourceHandler)
	d.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", d.Host, d.Port),
		Handler: mux,
	}

	d.watcher = &notifyWatcher{root: d.root, onChange: d.onChange}
	if err := d.watcher.start(); err != nil {
		return err
	}

	go func() {
		logger.Infof("Modpack dev server working on %s", d.server.Addr)
		err := d.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("dev server: %s", err.Error())
		}
	}()

	signal.Notify(d.closeChannel, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-d.closeChannel
	d.disposeInternal()
	logger.Infof("Modpack dev server closed")
	return nil
}

func (d *DevServer) Dispose() {
	close(d.closeChannel)
}

func (d *DevServer) disposeInternal() {
	d.watcher.stop()
	if d.server != nil {
		d.server.Close()
	}
}

func (d *DevServer) addConnToSet(conn *websocket.Conn) *ClientConnection {
	d.clientsMutex.Lock()
	defer d.clientsMutex.Unlock()
	client := &ClientConnection{
		conn:  conn,
		mutex: &sync.Mutex{},
	}
	d.clients = append(d.clients, client)
	return client
}

func (d *DevServer) removeConnFromSet(conn *websocket.Conn) {
	d.clientsMutex.Lock()
	defer d.clientsMutex.Unlock()
	index := -1
	for i, client := range d.clients {
		if client.conn == conn {
			index = i
		}
	}
	if index != -1 {
		d.clients = slices.Delete(d.clients, index, index+1)
	}
}

func (d *DevServer) sendMessageToAllConn(message PackMessage) {
	d.clientsMutex.Lock()
	defer d.clientsMutex.Unlock()
	for _, client := range d.clients {
		client.mutex.Lock()
		client.conn.WriteJSON(message)
		client.mutex.Unlock()
	}
}

func (d *DevServer) serveClient(client *ClientConnection) {
	defer client.conn.Close()
	client.conn.SetReadLimit(1024 * 1024) // 1MB
	for {
		client.conn.SetReadDeadline(time.Now().Add(d.timeout))
		_, message, err := client.conn.ReadMessage()
		if err != nil {
			break
		}
		if string(message) == "ping" {
			client.conn.SetWriteDeadline(time.Now().Add(d.timeout))
			client.mutex.Lock()
			client.conn.WriteJSON(PackMessage{
				Type: "pong",
			})
			client.mutex.Unlock()
		}
	}
}

func (d *DevServer) socketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	conn.SetCloseHandler(func(code int, text string) error {
		d.removeConnFromSet(conn)
		return nil
	})

	client := d.addConnToSet(conn)

	d.serveClient(client)
}

func (d *DevServer) clientHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/javascript")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(hot.DevClient()))
}

func (d *DevServer) getCached(key string) (*cachedFile, bool) {
	d.cacheMutex.Lock()
	defer d.cacheMutex.Unlock()
	file, ok := d.fileCache[key]
	return file, ok
}

func (d *DevServer) setCached(key string, file *cachedFile, sources []string) {
	d.cacheMutex.Lock()
	defer d.cacheMutex.Unlock()
	d.fileCache[key] = file
	for _, source := range sources {
		if !slices.Contains(d.watchIndex[source], key) {
			d.watchIndex[source] = append(d.watchIndex[source], key)
		}
	}
}

var transformableExts = map[string]bool{
	".js":  true,
	".jsx": true,
	".ts":  true,
	".tsx": true,
	".mjs": true,
}

func staticContentType(urlPath string) string {
	switch path.Ext(urlPath) {
	case ".css":
		return "text/css"
	case ".json", ".map":
		return "application/json"
	case ".svg":
		return "image/svg+xml"
	case ".html", ".htm":
		return "text/html; charset=utf-8"
	}
	return ""
}

func (d *DevServer) resourceHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	urlPath := path.Clean(r.URL.Path)
	if urlPath == "/" {
		urlPath = "/index.html"
	}

	if file, ok := d.getCached(urlPath); ok {
		d.writeFile(w, file)
		return
	}

	file, err := d.buildFile(urlPath)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if file == nil {
		// Unknown paths fall back to the index page so client-side routes
		// survive a reload.
		if path.Ext(urlPath) == "" && urlPath != "/index.html" {
			d.resourceHandlerFallback(w, r)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		return
	}
	d.writeFile(w, file)
}

func (d *DevServer) resourceHandlerFallback(w http.ResponseWriter, r *http.Request) {
	if file, ok := d.getCached("/index.html"); ok {
		d.writeFile(w, file)
		return
	}
	file, err := d.buildFile("/index.html")
	if err != nil || file == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	d.writeFile(w, file)
}

func (d *DevServer) writeFile(w http.ResponseWriter, file *cachedFile) {
	if file.contentType != "" {
		w.Header().Set("Content-Type", file.contentType)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(file.contents)
}

// buildFile produces and caches the response for one URL path. A nil file
// with a nil error means not found.
func (d *DevServer) buildFile(urlPath string) (*cachedFile, error) {
	fsPath := filepath.Join(d.root, filepath.FromSlash(urlPath))

	if loader, ok := plugin.LoaderFor(d.options.Plugins, fsPath); ok {
		if _, err := os.Stat(fsPath); errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		result, err := loader.Load(plugin.LoadArgs{Path: fsPath})
		if err != nil {
			d.sendMessageToAllConn(PackMessage{Type: "errors", Data: err.Error()})
			return nil, err
		}
		file := &cachedFile{contents: []byte(result.Contents), contentType: result.ContentType}
		d.setCached(urlPath, file, append(result.WatchFiles, fsPath))
		return file, nil
	}

	if transformableExts[path.Ext(urlPath)] {
		return d.transformFile(urlPath, fsPath)
	}

	data, err := os.ReadFile(fsPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	file := &cachedFile{contents: data, contentType: staticContentType(urlPath)}
	d.setCached(urlPath, file, []string{fsPath})
	return file, nil
}

func (d *DevServer) transformFile(urlPath string, fsPath string) (*cachedFile, error) {
	data, err := os.ReadFile(fsPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	result := Transform(TransformOptions{
		Filename:           urlPath,
		SourceText:         string(data),
		ImportMapJSON:      d.importMapJSON,
		JSXFactory:         d.options.JSXFactory,
		JSXFragmentFactory: d.options.JSXFragmentFactory,
		Mode:               ModeDevelopment,
		Plugins:            d.options.Plugins,
	})
	if len(result.Errors) > 0 {
		errorMessage := ""
		for _, msg := range result.Errors {
			errorMessage += msg.Text + "\n"
			if msg.Location != nil {
				errorMessage += msg.Location.File + "\n"
				errorMessage += msg.Location.LineText + "\n"
			}
		}
		d.sendMessageToAllConn(PackMessage{
			Type: "errors",
			Data: errorMessage,
		})
		return nil, errors.New(errorMessage)
	}
	for _, msg := range result.Warnings {
		logger.Warnf("%s: %s", urlPath, msg.Text)
	}

	code := result.Code
	if result.Map != "" {
		mapPath := urlPath + ".map"
		d.setCached(mapPath, &cachedFile{
			contents:    []byte(result.Map),
			contentType: "application/json",
		}, []string{fsPath})
		code += "//# sourceMappingURL=" + path.Base(mapPath) + "\n"
	}

	file := &cachedFile{contents: []byte(code), contentType: "text/javascript"}
	d.setCached(urlPath, file, []string{fsPath})

	size, unit := formatFileSize(len(code))
	logger.Debugf("transformed %s (%.2f%s)", urlPath, size, unit)
	return file, nil
}

// onChange runs on the watcher goroutine for every file event under root.
func (d *DevServer) onChange(changedPath string) {
	if changedPath == d.importMapPath {
		if err := d.loadImportMap(); err != nil {
			logger.Errorf("%s", err.Error())
			d.sendMessageToAllConn(PackMessage{Type: "errors", Data: err.Error()})
			return
		}
		d.invalidateAll()
	} else {
		d.invalidate(changedPath)
	}

	sum := md5.Sum([]byte(fmt.Sprintf("%s|%d", changedPath, time.Now().UnixNano())))
	hash := hex.EncodeToString(sum[:])
	d.sendMessageToAllConn(PackMessage{
		Type: "hash",
		Data: hash,
	})
	d.sendMessageToAllConn(PackMessage{
		Type: "ok",
		Data: hash,
	})
}

func (d *DevServer) invalidate(sourcePath string) {
	d.cacheMutex.Lock()
	defer d.cacheMutex.Unlock()
	for _, key := range d.watchIndex[sourcePath] {
		delete(d.fileCache, key)
	}
	delete(d.watchIndex, sourcePath)
}

func (d *DevServer) invalidateAll() {
	d.cacheMutex.Lock()
	defer d.cacheMutex.Unlock()
	d.fileCache = make(map[string]*cachedFile)
	d.watchIndex = make(map[string][]string)
}

// DevServe builds and runs a dev server, blocking until shutdown.
func DevServe(opts DevServeOptions) error {
	server, err := NewDevServer(opts)
	if err != nil {
		return err
	}
	return server.Run()
}
