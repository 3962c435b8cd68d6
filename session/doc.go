/*
Package session drives one request/response exchange between a client and a server over a FIFO or a Unix domain socket.

Each process performs exactly one exchange and then exits. There is no connection reuse, no retry and no timeout.

The protocol proceeds as follows:

1. The server prepares the path: it creates (or reuses) a FIFO, or removes any stale socket file and listens.
2. The client connects and writes a single frame: one length byte followed by the command text.
3. The client closes its request channel. For a FIFO this closes the write end; for a socket it shuts down writes.
4. The server reads exactly one frame, closes its request channel and opens its response channel.
5. The server tokenizes and resolves the command, then runs it with the response channel as the child's stdout.
6. The response is the raw, unframed stdout of the child, terminated when the server closes the channel.
7. The client copies the response to its own stdout until EOF.

If the command is empty or cannot be resolved, the server writes a one-line diagnostic on the response channel instead of output, and no child process is started.

Nothing authenticates the client or restricts which program runs. Anyone able to open the path can execute any program in the server's search path with the server's privileges.
*/
package session
